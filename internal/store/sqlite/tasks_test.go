package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

func TestCreateTaskWithRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Work")
	urgent := seedTag(t, s, u, "Urgent", domain.TagColorPink)

	task := seedTask(t, s, u, c, "Ship release", taskSeed{
		date:     "2025-10-24",
		desc:     "Cut the release branch",
		tags:     []*domain.Tag{urgent},
		subtasks: []string{"Write tests", "Create docs"},
	})

	got, err := s.GetTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Name != "Ship release" || got.Slug != "ship-release-alice" {
		t.Errorf("unexpected task: %q %q", got.Name, got.Slug)
	}
	if got.Description != "Cut the release branch" {
		t.Errorf("Description: got %q", got.Description)
	}
	if got.DateString() != "2025-10-24" {
		t.Errorf("Date: got %q", got.DateString())
	}
	if got.Category == nil || got.Category.ID != c.ID {
		t.Errorf("Category not joined: %+v", got.Category)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "Urgent" {
		t.Errorf("Tags: got %v", got.TagNames())
	}
	if len(got.Subtasks) != 2 {
		t.Fatalf("Subtasks: got %d", len(got.Subtasks))
	}
	subNames := map[string]bool{}
	for _, sub := range got.Subtasks {
		subNames[sub.Name] = true
	}
	if !subNames["Write tests"] || !subNames["Create docs"] {
		t.Errorf("subtask names: %v", subNames)
	}
	for _, sub := range got.Subtasks {
		if sub.UserID != u.ID || sub.TaskID != task.ID {
			t.Errorf("subtask ownership not derived from parent: %+v", sub)
		}
	}

	bySlug, err := s.GetTaskBySlug(ctx, u.ID, "ship-release-alice")
	if err != nil {
		t.Fatalf("GetTaskBySlug: %v", err)
	}
	if bySlug.ID != task.ID {
		t.Errorf("slug lookup mismatch: %q", bySlug.ID)
	}
}

func TestTaskSlugUniquePerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Work")
	dup := *seedTask(t, s, u, c, "Ship release", taskSeed{})
	dup.ID = "task-dup"

	err := s.CreateTask(ctx, &dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// The same name is fine for another user.
	bob := seedUser(t, s, "bob")
	cb := seedCategory(t, s, bob, "Work")
	seedTask(t, s, bob, cb, "Ship release", taskSeed{})
}

func TestTaskOwnershipIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	c := seedCategory(t, s, alice, "Private")
	task := seedTask(t, s, alice, c, "Buy gift", taskSeed{})

	// Another user's lookups behave exactly as if the task did not exist.
	if _, err := s.GetTask(ctx, bob.ID, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user get: expected ErrNotFound, got %v", err)
	}
	if err := s.SetTaskCompleted(ctx, bob.ID, task.ID, true); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user complete: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteTask(ctx, bob.ID, task.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user delete: expected ErrNotFound, got %v", err)
	}

	tasks, total, err := s.ListTasks(ctx, bob.ID, store.TaskCriteria{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if total != 0 || len(tasks) != 0 {
		t.Errorf("cross-user list leaked: total=%d len=%d", total, len(tasks))
	}

	// The owner still sees it untouched.
	got, err := s.GetTask(ctx, alice.ID, task.ID)
	if err != nil {
		t.Fatalf("owner GetTask: %v", err)
	}
	if got.IsCompleted {
		t.Error("cross-user complete mutated the task")
	}
}

func TestListTasksEmptyUser(t *testing.T) {
	s := newTestStore(t)

	tasks, total, err := s.ListTasks(context.Background(), "", store.TaskCriteria{})
	if err != nil {
		t.Fatalf("ListTasks with empty user: %v", err)
	}
	if total != 0 || len(tasks) != 0 {
		t.Errorf("expected empty result, got total=%d len=%d", total, len(tasks))
	}
}

func TestListTasksTagFilterDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Home")
	important := seedTag(t, s, u, "Critical", domain.TagColorPink)
	family := seedTag(t, s, u, "Household", domain.TagColorGreen)
	deadline := seedTag(t, s, u, "Due soon", domain.TagColorYellow)

	// Carries two of the three requested tags; must appear exactly once.
	both := seedTask(t, s, u, c, "Plan weekend", taskSeed{tags: []*domain.Tag{important, family}})
	seedTask(t, s, u, c, "Untagged", taskSeed{})
	one := seedTask(t, s, u, c, "File taxes", taskSeed{tags: []*domain.Tag{deadline}})

	tasks, total, err := s.ListTasks(ctx, u.ID, store.TaskCriteria{
		TagNames: []string{"Critical", "Household", "Due soon"},
	})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if total != 2 {
		t.Errorf("total: got %d, want 2", total)
	}
	if len(tasks) != 2 {
		t.Fatalf("len: got %d, want 2", len(tasks))
	}
	seen := map[string]int{}
	for _, task := range tasks {
		seen[task.ID]++
	}
	if seen[both.ID] != 1 {
		t.Errorf("multi-tag task appeared %d times", seen[both.ID])
	}
	if seen[one.ID] != 1 {
		t.Errorf("single-tag task appeared %d times", seen[one.ID])
	}
}

func TestListTasksCategoryMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	work := seedCategory(t, s, u, "Work")
	home := seedCategory(t, s, u, "Home")
	errands := seedCategory(t, s, u, "Errands")

	seedTask(t, s, u, work, "Standup", taskSeed{})
	seedTask(t, s, u, home, "Laundry", taskSeed{})
	seedTask(t, s, u, errands, "Groceries", taskSeed{})

	tasks, total, err := s.ListTasks(ctx, u.ID, store.TaskCriteria{
		CategorySlugs: []string{work.Slug, home.Slug},
	})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if total != 2 || len(tasks) != 2 {
		t.Fatalf("got total=%d len=%d, want 2", total, len(tasks))
	}
	for _, task := range tasks {
		if task.Category.Slug == errands.Slug {
			t.Errorf("excluded category leaked: %q", task.Name)
		}
	}
}

func TestListTasksDateFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Cal")

	seedTask(t, s, u, c, "Before range", taskSeed{date: "2025-10-23"})
	lower := seedTask(t, s, u, c, "Lower bound", taskSeed{date: "2025-10-24"})
	mid := seedTask(t, s, u, c, "In range", taskSeed{date: "2025-10-28"})
	upper := seedTask(t, s, u, c, "Upper bound", taskSeed{date: "2025-10-31"})
	seedTask(t, s, u, c, "After range", taskSeed{date: "2025-11-01"})
	seedTask(t, s, u, c, "No date", taskSeed{})

	// Closed range, inclusive at both ends.
	tasks, total, err := s.ListTasks(ctx, u.ID, store.TaskCriteria{
		DateAfter:  testDate(t, "2025-10-24"),
		DateBefore: testDate(t, "2025-10-31"),
	})
	if err != nil {
		t.Fatalf("ListTasks range: %v", err)
	}
	if total != 3 || len(tasks) != 3 {
		t.Fatalf("range: got total=%d len=%d, want 3", total, len(tasks))
	}
	want := map[string]bool{lower.ID: true, mid.ID: true, upper.ID: true}
	for _, task := range tasks {
		if !want[task.ID] {
			t.Errorf("unexpected task in range: %q (%s)", task.Name, task.DateString())
		}
	}

	// Exact date.
	tasks, total, err = s.ListTasks(ctx, u.ID, store.TaskCriteria{
		Date: testDate(t, "2025-10-28"),
	})
	if err != nil {
		t.Fatalf("ListTasks exact: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != mid.ID {
		t.Fatalf("exact date: got total=%d len=%d", total, len(tasks))
	}
}

func TestListTasksCompletionAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Misc")

	done := seedTask(t, s, u, c, "Water plants", taskSeed{completed: true})
	seedTask(t, s, u, c, "Repot the ficus", taskSeed{desc: "Needs fresh SOIL and a bigger pot"})
	seedTask(t, s, u, c, "Pay rent", taskSeed{})

	completed := true
	tasks, total, err := s.ListTasks(ctx, u.ID, store.TaskCriteria{IsCompleted: &completed})
	if err != nil {
		t.Fatalf("ListTasks completed: %v", err)
	}
	if total != 1 || len(tasks) != 1 || tasks[0].ID != done.ID {
		t.Fatalf("completed filter: total=%d len=%d", total, len(tasks))
	}

	// Search is case-insensitive and matches name or description.
	_, total, err = s.ListTasks(ctx, u.ID, store.TaskCriteria{Search: "plants"})
	if err != nil {
		t.Fatalf("ListTasks search name: %v", err)
	}
	if total != 1 {
		t.Errorf("name search: got %d, want 1", total)
	}

	_, total, err = s.ListTasks(ctx, u.ID, store.TaskCriteria{Search: "soil"})
	if err != nil {
		t.Fatalf("ListTasks search description: %v", err)
	}
	if total != 1 {
		t.Errorf("description search: got %d, want 1", total)
	}

	_, total, err = s.ListTasks(ctx, u.ID, store.TaskCriteria{Search: "nothing here"})
	if err != nil {
		t.Fatalf("ListTasks search miss: %v", err)
	}
	if total != 0 {
		t.Errorf("miss search: got %d, want 0", total)
	}
}

func TestListTasksSearchLiteralMetacharacters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Misc")

	seedTask(t, s, u, c, "Review ABC draft", taskSeed{})
	pct := seedTask(t, s, u, c, "Raise quota to 100%", taskSeed{})
	under := seedTask(t, s, u, c, "Rename a_c helper", taskSeed{desc: `lives in util\helpers`})

	// LIKE wildcards in the term must match themselves, not act as
	// wildcards. "a_c" must not match "ABC".
	cases := []struct {
		search string
		wantID string
	}{
		{"a_c", under.ID},
		{"100%", pct.ID},
		{`util\helpers`, under.ID},
	}
	for _, tc := range cases {
		tasks, total, err := s.ListTasks(ctx, u.ID, store.TaskCriteria{Search: tc.search})
		if err != nil {
			t.Fatalf("ListTasks search %q: %v", tc.search, err)
		}
		if total != 1 || len(tasks) != 1 || tasks[0].ID != tc.wantID {
			t.Errorf("search %q: got total=%d, want exactly %q", tc.search, total, tc.wantID)
		}
	}
}

func TestListTasksOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	alpha := seedCategory(t, s, u, "Alpha")
	zulu := seedCategory(t, s, u, "Zulu")

	seedTask(t, s, u, zulu, "Late", taskSeed{date: "2025-12-01"})
	seedTask(t, s, u, alpha, "Early", taskSeed{date: "2025-01-15"})

	only := store.TaskCriteria{CategorySlugs: []string{alpha.Slug, zulu.Slug}}

	// Default ordering is category slug ascending.
	tasks, _, err := s.ListTasks(ctx, u.ID, only)
	if err != nil {
		t.Fatalf("ListTasks default sort: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Category.Slug > tasks[1].Category.Slug {
		t.Errorf("default sort wrong: %v", taskNames(tasks))
	}

	crit := only
	crit.Sort = store.SortDateDesc
	tasks, _, err = s.ListTasks(ctx, u.ID, crit)
	if err != nil {
		t.Fatalf("ListTasks date desc: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Name != "Late" {
		t.Errorf("date desc sort wrong: %v", taskNames(tasks))
	}
}

func taskNames(tasks []*domain.Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	return names
}

func TestListTasksPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Backlog")

	names := []string{"One", "Two", "Three", "Four", "Five", "Six"}
	for _, name := range names {
		seedTask(t, s, u, c, name, taskSeed{})
	}
	only := store.TaskCriteria{CategorySlugs: []string{c.Slug}}

	page := func(n int) ([]*domain.Task, int) {
		crit := only
		crit.Page = store.Page{Number: n, Size: 5}
		tasks, total, err := s.ListTasks(ctx, u.ID, crit)
		if err != nil {
			t.Fatalf("ListTasks page %d: %v", n, err)
		}
		return tasks, total
	}

	p1, total := page(1)
	if total != 6 || len(p1) != 5 {
		t.Fatalf("page 1: total=%d len=%d, want 6/5", total, len(p1))
	}
	p2, total := page(2)
	if total != 6 || len(p2) != 1 {
		t.Fatalf("page 2: total=%d len=%d, want 6/1", total, len(p2))
	}
	// A page past the end is an empty list, not an error. The total
	// still reports every match.
	p3, total := page(3)
	if total != 6 || len(p3) != 0 {
		t.Fatalf("page 3: total=%d len=%d, want 6/0", total, len(p3))
	}

	// Size 0 disables pagination.
	all, total, err := s.ListTasks(ctx, u.ID, only)
	if err != nil {
		t.Fatalf("ListTasks unpaginated: %v", err)
	}
	if total != 6 || len(all) != 6 {
		t.Fatalf("unpaginated: total=%d len=%d", total, len(all))
	}
}

func TestUpdateTaskReplacesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Work")
	old := seedTag(t, s, u, "Old", domain.TagColorYellow)
	fresh := seedTag(t, s, u, "Fresh", domain.TagColorGreen)

	task := seedTask(t, s, u, c, "Rotate tags", taskSeed{tags: []*domain.Tag{old}})

	task.Tags = []*domain.Tag{fresh}
	task.Touch()
	if err := s.UpdateTask(ctx, task, store.UpdateTaskOptions{ReplaceTags: true}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, err := s.GetTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != fresh.ID {
		t.Errorf("tags not replaced: %v", got.TagNames())
	}
}

func TestUpdateTaskReplacesSubtasksByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Work")
	task := seedTask(t, s, u, c, "Release", taskSeed{subtasks: []string{"Write tests", "Create docs"}})

	before, err := s.GetTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	var keptID string
	for _, sub := range before.Subtasks {
		if sub.Name == "Write tests" {
			keptID = sub.ID
		}
	}
	if keptID == "" {
		t.Fatal("seeded subtask missing")
	}

	// Resubmit with one name kept, one dropped, one new.
	task.Subtasks = []*domain.Subtask{
		{Name: "Write tests", IsCompleted: true},
		{Name: "Ship"},
	}
	task.Touch()
	if err := s.UpdateTask(ctx, task, store.UpdateTaskOptions{ReplaceSubtasks: true}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	after, err := s.GetTask(ctx, u.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask after: %v", err)
	}
	if len(after.Subtasks) != 2 {
		t.Fatalf("subtasks: got %d, want 2", len(after.Subtasks))
	}
	byName := map[string]*domain.Subtask{}
	for _, sub := range after.Subtasks {
		byName[sub.Name] = sub
	}
	if byName["Create docs"] != nil {
		t.Error("dropped subtask still present")
	}
	kept := byName["Write tests"]
	if kept == nil {
		t.Fatal("kept subtask missing")
	}
	// Matching by name preserves identity.
	if kept.ID != keptID {
		t.Errorf("kept subtask changed ID: %q -> %q", keptID, kept.ID)
	}
	if !kept.IsCompleted {
		t.Error("kept subtask completion not applied")
	}
	created := byName["Ship"]
	if created == nil {
		t.Fatal("new subtask missing")
	}
	if created.ID == "" || created.ID == keptID {
		t.Errorf("new subtask has bad ID %q", created.ID)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	c := seedCategory(t, s, u, "Work")
	task := &domain.Task{
		ID:         "task-ghost",
		UserID:     u.ID,
		CategoryID: c.ID,
		Name:       "Ghost",
		Slug:       "ghost-alice",
		UpdatedAt:  time.Now(),
	}
	if err := s.UpdateTask(ctx, task, store.UpdateTaskOptions{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCompletedTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	ca := seedCategory(t, s, alice, "Work")
	cb := seedCategory(t, s, bob, "Work")

	seedTask(t, s, alice, ca, "Done one", taskSeed{completed: true})
	seedTask(t, s, alice, ca, "Done two", taskSeed{completed: true})
	open := seedTask(t, s, alice, ca, "Still open", taskSeed{})
	bobsDone := seedTask(t, s, bob, cb, "Bob done", taskSeed{completed: true})

	n, err := s.DeleteCompletedTasks(ctx, alice.ID)
	if err != nil {
		t.Fatalf("DeleteCompletedTasks: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted count: got %d, want 2", n)
	}
	if _, err := s.GetTask(ctx, alice.ID, open.ID); err != nil {
		t.Errorf("open task removed: %v", err)
	}
	if _, err := s.GetTask(ctx, bob.ID, bobsDone.ID); err != nil {
		t.Errorf("other user's task removed: %v", err)
	}

	// Empty userID is a no-op, not an error.
	n, err = s.DeleteCompletedTasks(ctx, "")
	if err != nil || n != 0 {
		t.Errorf("empty user: n=%d err=%v", n, err)
	}
}
