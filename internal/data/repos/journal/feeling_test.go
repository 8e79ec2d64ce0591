package journal

import (
	"context"
	"testing"
	"time"

	"github.com/mindmirror/mindmirror-backend/internal/data/repos/testutil"
	types "github.com/mindmirror/mindmirror-backend/internal/domain"
)

func strPtr(s string) *string { return &s }

// exerciseFeelingRepo runs the behaviour both backends must share.
func exerciseFeelingRepo(t *testing.T, repo FeelingRepo) {
	t.Helper()
	ctx := context.Background()

	alice := "alice-" + types.NewID()
	bob := "bob-" + types.NewID()

	mk := func(owner string, mood types.Mood, text string) *types.Feeling {
		t.Helper()
		f, err := repo.Create(ctx, nil, &types.Feeling{
			OwnerID:    owner,
			Text:       text,
			Mood:       mood,
			Gratitude:  strPtr("coffee"),
			AIResponse: "resp",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		return f
	}

	first := mk(alice, types.MoodHappy, "one")
	time.Sleep(5 * time.Millisecond)
	second := mk(alice, types.MoodSad, "two")
	time.Sleep(5 * time.Millisecond)
	third := mk(alice, types.MoodHappy, "three")
	other := mk(bob, types.MoodAngry, "bob's")

	if !types.IsValidID(first.ID) {
		t.Fatalf("Create: id not 24-hex: %q", first.ID)
	}
	if first.CreatedAt.IsZero() || time.Since(first.CreatedAt) > time.Minute {
		t.Fatalf("Create: unexpected createdAt %v", first.CreatedAt)
	}

	list, err := repo.ListByOwner(ctx, nil, alice, types.ListFilter{})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("ListByOwner: got=%d want=3", len(list))
	}
	if list[0].ID != third.ID || list[2].ID != first.ID {
		t.Fatalf("ListByOwner: not newest first: %q %q %q", list[0].ID, list[1].ID, list[2].ID)
	}
	for _, f := range list {
		if f.OwnerID != alice {
			t.Fatalf("ListByOwner: leaked record of %q", f.OwnerID)
		}
	}

	happy, err := repo.ListByOwner(ctx, nil, alice, types.ListFilter{Mood: types.MoodHappy})
	if err != nil {
		t.Fatalf("ListByOwner (mood): %v", err)
	}
	if len(happy) != 2 {
		t.Fatalf("ListByOwner (mood): got=%d want=2", len(happy))
	}

	page, err := repo.ListByOwner(ctx, nil, alice, types.ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListByOwner (page): %v", err)
	}
	if len(page) != 1 || page[0].ID != second.ID {
		t.Fatalf("ListByOwner (page): unexpected %+v", page)
	}

	got, err := repo.GetByIDForOwner(ctx, nil, second.ID, alice)
	if err != nil || got == nil {
		t.Fatalf("GetByIDForOwner: got=%v err=%v", got, err)
	}
	if got.Text != "two" || got.Gratitude == nil || *got.Gratitude != "coffee" {
		t.Fatalf("GetByIDForOwner: unexpected %+v", got)
	}
	if got, err := repo.GetByIDForOwner(ctx, nil, other.ID, alice); err != nil || got != nil {
		t.Fatalf("GetByIDForOwner (foreign): got=%v err=%v", got, err)
	}

	if updated, err := repo.Update(ctx, nil, other.ID, alice, types.FeelingPatch{Text: "hijack", Mood: types.MoodSad}); err != nil || updated != nil {
		t.Fatalf("Update (foreign): got=%v err=%v", updated, err)
	}
	untouched, _ := repo.GetByIDForOwner(ctx, nil, other.ID, bob)
	if untouched == nil || untouched.Text != "bob's" || untouched.Mood != types.MoodAngry {
		t.Fatalf("Update (foreign): record mutated: %+v", untouched)
	}

	updated, err := repo.Update(ctx, nil, second.ID, alice, types.FeelingPatch{
		Text:       "two, edited",
		Mood:       types.MoodExcited,
		AIResponse: "new resp",
	})
	if err != nil || updated == nil {
		t.Fatalf("Update: got=%v err=%v", updated, err)
	}
	if updated.Text != "two, edited" || updated.Mood != types.MoodExcited || updated.AIResponse != "new resp" {
		t.Fatalf("Update: unexpected %+v", updated)
	}
	if updated.Gratitude == nil || *updated.Gratitude != "coffee" {
		t.Fatalf("Update: gratitude changed without SetGratitude: %v", updated.Gratitude)
	}
	if !updated.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("Update: createdAt moved: got=%v want=%v", updated.CreatedAt, second.CreatedAt)
	}

	cleared, err := repo.Update(ctx, nil, second.ID, alice, types.FeelingPatch{
		Text:         "two, edited",
		Mood:         types.MoodExcited,
		AIResponse:   "new resp",
		SetGratitude: true,
	})
	if err != nil || cleared == nil {
		t.Fatalf("Update (clear gratitude): got=%v err=%v", cleared, err)
	}
	if cleared.Gratitude != nil {
		t.Fatalf("Update (clear gratitude): got=%q", *cleared.Gratitude)
	}

	counts, err := repo.AggregateMoodCounts(ctx, nil, alice)
	if err != nil {
		t.Fatalf("AggregateMoodCounts: %v", err)
	}
	want := []types.MoodCount{{Mood: types.MoodHappy, Count: 2}, {Mood: types.MoodExcited, Count: 1}}
	if len(counts) != len(want) {
		t.Fatalf("AggregateMoodCounts: got=%+v want=%+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("AggregateMoodCounts[%d]: got=%+v want=%+v", i, counts[i], want[i])
		}
	}

	since, err := repo.ListSince(ctx, nil, alice, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(since) != 3 || since[0].ID != first.ID || since[2].ID != third.ID {
		t.Fatalf("ListSince: expected oldest first, got %d records", len(since))
	}

	ok, err := repo.Delete(ctx, nil, other.ID, alice)
	if err != nil || ok {
		t.Fatalf("Delete (foreign): ok=%v err=%v", ok, err)
	}
	ok, err = repo.Delete(ctx, nil, first.ID, alice)
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Delete(ctx, nil, first.ID, alice)
	if err != nil || ok {
		t.Fatalf("Delete (again): ok=%v err=%v", ok, err)
	}
}

func TestFeelingRepo(t *testing.T) {
	db := testutil.DB(t)
	exerciseFeelingRepo(t, NewFeelingRepo(db, testutil.Logger(t)))
}

func TestFeelingRepoTx(t *testing.T) {
	db := testutil.DB(t)
	repo := NewFeelingRepo(db, testutil.Logger(t))
	ctx := context.Background()

	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	if _, err := repo.Create(ctx, tx, &types.Feeling{OwnerID: "u1", Text: "x", Mood: types.MoodNeutral, AIResponse: "r"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := tx.Rollback().Error; err != nil {
		t.Fatalf("rollback: %v", err)
	}

	list, err := repo.ListByOwner(ctx, nil, "u1", types.ListFilter{})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rolled back create still visible: %d", len(list))
	}
}

func TestFeelingRepoListSinceWindow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewFeelingRepo(db, testutil.Logger(t))
	ctx := context.Background()

	now := time.Now().UTC()
	testutil.SeedFeeling(t, ctx, db, "u1", types.MoodSad, now.Add(-10*24*time.Hour))
	recentOld := testutil.SeedFeeling(t, ctx, db, "u1", types.MoodHappy, now.Add(-6*24*time.Hour))
	recentNew := testutil.SeedFeeling(t, ctx, db, "u1", types.MoodAngry, now.Add(-time.Hour))
	testutil.SeedFeeling(t, ctx, db, "u2", types.MoodHappy, now.Add(-time.Hour))

	got, err := repo.ListSince(ctx, nil, "u1", now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("ListSince: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListSince: got=%d want=2", len(got))
	}
	if got[0].ID != recentOld.ID || got[1].ID != recentNew.ID {
		t.Fatalf("ListSince: order got=[%s %s]", got[0].ID, got[1].ID)
	}

	counts, err := repo.AggregateMoodCounts(ctx, nil, "nobody")
	if err != nil {
		t.Fatalf("AggregateMoodCounts (empty): %v", err)
	}
	if len(counts) != 0 {
		t.Fatalf("AggregateMoodCounts (empty): got=%+v", counts)
	}
}

func TestMongoFeelingRepo(t *testing.T) {
	database := testutil.MongoDB(t)
	if err := EnsureFeelingIndexes(context.Background(), database); err != nil {
		t.Fatalf("EnsureFeelingIndexes: %v", err)
	}
	exerciseFeelingRepo(t, NewMongoFeelingRepo(database, testutil.Logger(t)))
}
