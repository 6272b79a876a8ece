// Package main provides a tool to seed the database with demo data.
//
// It registers a demo account (complete with the default categories and
// tags) and fills it with a spread of dated, tagged tasks to exercise
// the list, grouped, and calendar views.
//
// Usage:
//
//	TASKDECK_DB_PATH=~/taskdeck/taskdeck.db go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/auth"
	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	domainerrors "github.com/taskdeckapp/taskdeck-server/internal/errors"
	"github.com/taskdeckapp/taskdeck-server/internal/service"
	"github.com/taskdeckapp/taskdeck-server/internal/store/sqlite"
)

var (
	username = flag.String("username", "demo", "Username for the demo account")
	taskDays = flag.Int("days", 14, "Spread task due dates over this many days")
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("TASKDECK_DB_PATH")
	if dbPath == "" {
		dbPath = "taskdeck.db"
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	key, err := auth.LoadOrGenerateKey(filepath.Dir(dbPath))
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}
	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	sessions := service.NewSessionService(st, tokenService, logger)
	users := service.NewUserService(st, sessions, logger)
	tasks := service.NewTaskService(st, logger)

	ctx := context.Background()

	user, err := ensureDemoUser(ctx, users, st, *username)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	fmt.Printf("Demo account ready: %s (%s)\n", user.Username, user.Email)

	categories, err := st.ListCategories(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	tags, err := st.ListTags(ctx, user.ID)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := seedTasks(ctx, tasks, user, categories, tags, rng)
	fmt.Printf("Created %d tasks across %d categories\n", created, len(categories))
}

// ensureDemoUser registers the demo account, reusing it when the seeder
// has run before.
func ensureDemoUser(ctx context.Context, users *service.UserService, st *sqlite.Store, username string) (*domain.User, error) {
	email := username + "@taskdeck.local"

	resp, err := users.Register(ctx, service.RegisterRequest{
		Email:     email,
		Username:  username,
		Password:  "demopassword",
		FirstName: "Demo",
	})
	if err == nil {
		return resp.User, nil
	}

	var derr *domainerrors.Error
	if errors.As(err, &derr) && derr.Code == domainerrors.CodeAlreadyExists {
		return st.GetUserByEmail(ctx, email)
	}
	return nil, err
}

var taskTemplates = []struct {
	name        string
	description string
	subtasks    []string
}{
	{"Buy groceries", "Milk, eggs, bread, coffee", []string{"Make list", "Check pantry"}},
	{"Ship quarterly report", "Numbers for Q3 review", []string{"Collect figures", "Draft summary", "Send to review"}},
	{"Book dentist appointment", "", nil},
	{"Water the plants", "Balcony and living room", nil},
	{"Plan weekend trip", "Check train times and weather", []string{"Pick destination", "Reserve tickets"}},
	{"Renew gym membership", "", nil},
	{"Call the plumber", "Kitchen sink drips again", nil},
	{"Prepare talk slides", "Internal tech talk on caching", []string{"Outline", "Draw diagrams", "Dry run"}},
	{"Clean the garage", "", []string{"Sort shelves", "Take out recycling"}},
	{"Review pull requests", "", nil},
}

func seedTasks(
	ctx context.Context,
	tasks *service.TaskService,
	user *domain.User,
	categories []*domain.Category,
	tags []*domain.Tag,
	rng *rand.Rand,
) int {
	created := 0
	today := time.Now()

	for i, tmpl := range taskTemplates {
		category := categories[i%len(categories)]

		req := service.CreateTaskRequest{
			Category:    category.Slug,
			Name:        tmpl.name,
			Description: tmpl.description,
		}

		// Roughly two thirds of the tasks get a due date.
		if rng.Intn(3) > 0 {
			day := today.AddDate(0, 0, rng.Intn(*taskDays))
			req.Date = day.Format(domain.DateLayout)
		}
		if rng.Intn(2) == 0 && len(tags) > 0 {
			req.Tags = []string{tags[rng.Intn(len(tags))].Name}
		}
		for _, sub := range tmpl.subtasks {
			req.Subtasks = append(req.Subtasks, service.SubtaskInput{
				Name:        sub,
				IsCompleted: rng.Intn(3) == 0,
			})
		}

		task, err := tasks.Create(ctx, user, req)
		if err != nil {
			// Re-running the seeder trips the per-user slug constraint.
			log.Printf("Skipping %q: %v", tmpl.name, err)
			continue
		}

		if rng.Intn(4) == 0 {
			if err := tasks.Complete(ctx, user.ID, task.ID, true); err != nil {
				log.Printf("Failed to complete %q: %v", tmpl.name, err)
			}
		}
		created++
	}
	return created
}
