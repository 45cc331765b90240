package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

func newLessonFixture(t *testing.T) (*fakeRepo, LessonService) {
	t.Helper()
	repo := newFakeRepo()
	service := NewLessonService(repo, nil, testLogger(), validator.New())
	return repo, service
}

func lessonIDs(lessons []*models.Lesson) []uint {
	ids := make([]uint, len(lessons))
	for i, lesson := range lessons {
		ids[i] = lesson.ID
	}
	return ids
}

func TestLessonCreate_AppendsToOrder(t *testing.T) {
	repo, service := newLessonFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)

	first, err := service.Create(ctx, course.ID, &validator.LessonCreateRequest{Title: "Setup"}, instructor.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := service.Create(ctx, course.ID, &validator.LessonCreateRequest{Title: "Variables"}, instructor.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if first.OrderIndex != 1 || second.OrderIndex != 2 {
		t.Errorf("expected order indexes 1 and 2, got %d and %d", first.OrderIndex, second.OrderIndex)
	}

	t.Run("non-owner cannot add lessons", func(t *testing.T) {
		stranger := repo.seedUser(models.RoleInstructor)
		_, err := service.Create(ctx, course.ID, &validator.LessonCreateRequest{Title: "Hijack"}, stranger.ID)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("admin can add lessons to any course", func(t *testing.T) {
		admin := repo.seedUser(models.RoleAdmin)
		lesson, err := service.Create(ctx, course.ID, &validator.LessonCreateRequest{Title: "Closing notes"}, admin.ID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if lesson.OrderIndex != 3 {
			t.Errorf("expected order index 3, got %d", lesson.OrderIndex)
		}
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := service.Create(ctx, 9999, &validator.LessonCreateRequest{Title: "Ghost"}, instructor.ID)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", err)
		}
	})
}

func TestLessonUpdate(t *testing.T) {
	repo, service := newLessonFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)
	lesson := repo.seedLesson(course.ID, 1)

	title := "Reworked intro"
	duration := 25
	updated, err := service.Update(ctx, lesson.ID, &validator.LessonUpdateRequest{
		Title:           &title,
		DurationMinutes: &duration,
	}, instructor.ID)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != title || updated.DurationMinutes != 25 {
		t.Errorf("expected fields updated, got %q / %d", updated.Title, updated.DurationMinutes)
	}
	if updated.OrderIndex != 1 {
		t.Errorf("partial update must not move the lesson, got order %d", updated.OrderIndex)
	}

	t.Run("unknown lesson", func(t *testing.T) {
		_, err := service.Update(ctx, 9999, &validator.LessonUpdateRequest{Title: &title}, instructor.ID)
		if !errors.Is(err, ErrLessonNotFound) {
			t.Errorf("expected ErrLessonNotFound, got %v", err)
		}
	})
}

func TestLessonDelete(t *testing.T) {
	repo, service := newLessonFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	student := repo.seedUser(models.RoleStudent)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)
	lesson := repo.seedLesson(course.ID, 1)

	if err := service.Delete(ctx, lesson.ID, student.ID); !IsPermissionError(err) {
		t.Errorf("expected permission error for a student, got %v", err)
	}

	if err := service.Delete(ctx, lesson.ID, instructor.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Lesson().GetByID(ctx, nil, lesson.ID); err == nil {
		t.Error("expected lesson row gone")
	}
}

func TestLessonGetByCourse_Visibility(t *testing.T) {
	repo, service := newLessonFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)
	repo.seedLesson(course.ID, 1)

	t.Run("draft course hidden from anonymous viewers", func(t *testing.T) {
		_, err := service.GetByCourse(ctx, course.ID, nil)
		if !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("expected ErrCourseNotFound, got %v", err)
		}
	})

	t.Run("owner sees draft lessons", func(t *testing.T) {
		lessons, err := service.GetByCourse(ctx, course.ID, instructor)
		if err != nil {
			t.Fatalf("GetByCourse failed: %v", err)
		}
		if len(lessons) != 1 {
			t.Errorf("expected 1 lesson, got %d", len(lessons))
		}
	})
}

func TestLessonReorder(t *testing.T) {
	repo, service := newLessonFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)
	a := repo.seedLesson(course.ID, 1)
	b := repo.seedLesson(course.ID, 2)
	c := repo.seedLesson(course.ID, 3)

	reordered, err := service.Reorder(ctx, course.ID, &validator.LessonReorderRequest{
		LessonIDs: []uint{c.ID, a.ID, b.ID},
	}, instructor.ID)
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	got := lessonIDs(reordered)
	want := []uint{c.ID, a.ID, b.ID}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}

	t.Run("missing lesson id", func(t *testing.T) {
		_, err := service.Reorder(ctx, course.ID, &validator.LessonReorderRequest{
			LessonIDs: []uint{a.ID, b.ID},
		}, instructor.ID)
		if !IsBusinessRuleError(err) {
			t.Errorf("expected business rule error, got %v", err)
		}
	})

	t.Run("duplicate lesson id", func(t *testing.T) {
		_, err := service.Reorder(ctx, course.ID, &validator.LessonReorderRequest{
			LessonIDs: []uint{a.ID, a.ID, b.ID},
		}, instructor.ID)
		if !IsBusinessRuleError(err) {
			t.Errorf("expected business rule error, got %v", err)
		}
	})

	t.Run("foreign lesson id", func(t *testing.T) {
		otherCourse := repo.seedCourse(instructor.ID, models.StatusDraft)
		foreign := repo.seedLesson(otherCourse.ID, 1)
		_, err := service.Reorder(ctx, course.ID, &validator.LessonReorderRequest{
			LessonIDs: []uint{foreign.ID, a.ID, b.ID},
		}, instructor.ID)
		if !IsBusinessRuleError(err) {
			t.Errorf("expected business rule error, got %v", err)
		}
	})
}
