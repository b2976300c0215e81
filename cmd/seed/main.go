// seed fills the configured store with a handful of sample students.
//
// Students whose email is already taken are skipped, so the command can be
// run repeatedly against the same database.
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/logger"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/storage/backend"
	"github.com/aanand-mishra/students-api/internal/types"
	"github.com/aanand-mishra/students-api/internal/validation"
)

var samples = []types.StudentInput{
	{Name: "Alice Johnson", Email: "alice.johnson@example.com", Course: "Computer Science"},
	{Name: "Bob Smith", Email: "bob.smith@example.com", Course: "Data Science"},
	{Name: "Carol Davis", Email: "carol.davis@example.com", Course: "Software Engineering"},
	{Name: "David Wilson", Email: "david.wilson@example.com", Course: "Information Technology"},
	{Name: "Eva Brown", Email: "eva.brown@example.com", Course: "Cybersecurity"},
	{Name: "Frank Miller", Email: "frank.miller@example.com", Course: "Machine Learning"},
	{Name: "Grace Lee", Email: "grace.lee@example.com", Course: "Web Development"},
	{Name: "Henry Taylor", Email: "henry.taylor@example.com", Course: "Mobile Development"},
}

func main() {
	cfg := config.MustLoad()

	logr, zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	slog.SetDefault(logr)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	created, skipped, err := seed(ctx, store, validation.New(store.ValidID))
	if err != nil {
		slog.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seeding complete",
		slog.String("driver", cfg.Storage.Driver),
		slog.Int("created", created),
		slog.Int("skipped", skipped))
}

// seed inserts every sample that validates, skipping duplicates.
func seed(ctx context.Context, store storage.Storage, validate *validation.Validator) (created, skipped int, err error) {
	for _, sample := range samples {
		in, err := validate.Student(sample)
		if err != nil {
			return created, skipped, err
		}

		student, err := store.CreateStudent(ctx, in)
		switch {
		case errors.Is(err, storage.ErrDuplicateEmail):
			slog.Info("student already present", slog.String("email", in.Email))
			skipped++
		case err != nil:
			return created, skipped, err
		default:
			slog.Info("student created",
				slog.String("id", student.ID),
				slog.String("name", student.Name),
				slog.String("course", student.Course))
			created++
		}
	}
	return created, skipped, nil
}
