package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

func newCourseFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, CourseService) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewCourseService(repo, nil, testLogger(), validator.New(), publisher)
	return repo, publisher, service
}

func TestCourseCreate(t *testing.T) {
	repo, _, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	student := repo.seedUser(models.RoleStudent)

	t.Run("draft by default", func(t *testing.T) {
		course, err := service.Create(ctx, &validator.CourseCreateRequest{
			Title: "Intro to Go",
			Level: models.LevelBeginner,
		}, instructor.ID)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if course.Status != models.StatusDraft {
			t.Errorf("expected draft status, got %s", course.Status)
		}
		if course.Slug != "intro-to-go" {
			t.Errorf("expected slug intro-to-go, got %q", course.Slug)
		}
	})

	t.Run("publish on create requires lessons", func(t *testing.T) {
		// A new course has no lessons yet, so the publish flag fails the
		// same transition check as the publish endpoint.
		_, err := service.Create(ctx, &validator.CourseCreateRequest{
			Title:   "Advanced Go",
			Level:   models.LevelAdvanced,
			Publish: true,
		}, instructor.ID)
		if !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		repo.mu.Lock()
		for _, course := range repo.courses {
			if course.Title == "Advanced Go" {
				t.Error("course should not be created when publish is rejected")
			}
		}
		repo.mu.Unlock()
	})

	t.Run("student rejected", func(t *testing.T) {
		_, err := service.Create(ctx, &validator.CourseCreateRequest{
			Title: "Not Allowed",
			Level: models.LevelBeginner,
		}, student.ID)
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("missing category", func(t *testing.T) {
		missing := uint(999)
		_, err := service.Create(ctx, &validator.CourseCreateRequest{
			Title:      "No Category",
			Level:      models.LevelBeginner,
			CategoryID: &missing,
		}, instructor.ID)
		if !errors.Is(err, ErrCategoryNotFound) {
			t.Errorf("expected ErrCategoryNotFound, got %v", err)
		}
	})
}

func TestCourseLifecycle(t *testing.T) {
	repo, publisher, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	admin := repo.seedUser(models.RoleAdmin)

	course := repo.seedCourse(instructor.ID, models.StatusDraft)
	repo.seedLesson(course.ID, 1)

	t.Run("submit draft", func(t *testing.T) {
		updated, err := service.Submit(ctx, course.ID, instructor.ID)
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if updated.Status != models.StatusPending {
			t.Errorf("expected pending, got %s", updated.Status)
		}
		if n := countEvents(publisher, events.EventCourseSubmitted); n != 1 {
			t.Errorf("expected 1 submitted event, got %d", n)
		}
	})

	t.Run("approve pending", func(t *testing.T) {
		updated, err := service.Approve(ctx, course.ID, admin.ID)
		if err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
		if updated.Status != models.StatusPublished {
			t.Errorf("expected published, got %s", updated.Status)
		}
		// Status change by an admin notifies the instructor.
		if n := countActivities(repo, instructor.ID, models.ActivityStatusNotification); n != 1 {
			t.Errorf("expected 1 status notification for the instructor, got %d", n)
		}
	})

	t.Run("archive published", func(t *testing.T) {
		updated, err := service.Archive(ctx, course.ID, instructor.ID)
		if err != nil {
			t.Fatalf("Archive failed: %v", err)
		}
		if updated.Status != models.StatusArchived {
			t.Errorf("expected archived, got %s", updated.Status)
		}
	})

	t.Run("archived courses can be republished", func(t *testing.T) {
		updated, err := service.Publish(ctx, course.ID, instructor.ID)
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if updated.Status != models.StatusPublished {
			t.Errorf("expected published, got %s", updated.Status)
		}
	})

	t.Run("published cannot go back to pending", func(t *testing.T) {
		if _, err := service.Submit(ctx, course.ID, instructor.ID); err == nil {
			t.Errorf("expected invalid transition error")
		}
	})
}

func TestCoursePublish_RequiresLesson(t *testing.T) {
	repo, _, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(instructor.ID, models.StatusDraft)

	if _, err := service.Publish(ctx, course.ID, instructor.ID); err == nil {
		t.Fatalf("expected publish of a lessonless course to fail")
	}
}

func TestCourseReject(t *testing.T) {
	repo, publisher, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	admin := repo.seedUser(models.RoleAdmin)
	course := repo.seedCourse(instructor.ID, models.StatusPending)
	repo.seedLesson(course.ID, 1)

	t.Run("requires reason", func(t *testing.T) {
		if _, err := service.Reject(ctx, course.ID, admin.ID, "  "); err == nil {
			t.Errorf("expected rejection without reason to fail")
		}
	})

	t.Run("requires admin", func(t *testing.T) {
		_, err := service.Reject(ctx, course.ID, instructor.ID, "needs work")
		if !IsPermissionError(err) {
			t.Errorf("expected permission error, got %v", err)
		}
	})

	t.Run("moves back to draft with reason", func(t *testing.T) {
		updated, err := service.Reject(ctx, course.ID, admin.ID, "needs work")
		if err != nil {
			t.Fatalf("Reject failed: %v", err)
		}
		if updated.Status != models.StatusDraft {
			t.Errorf("expected draft, got %s", updated.Status)
		}
		if updated.RejectionReason == nil || *updated.RejectionReason != "needs work" {
			t.Errorf("expected rejection reason to be stored")
		}
		if n := countEvents(publisher, events.EventCourseRejected); n != 1 {
			t.Errorf("expected 1 rejected event, got %d", n)
		}
	})
}

func TestCourseVisibility(t *testing.T) {
	repo, _, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	admin := repo.seedUser(models.RoleAdmin)
	stranger := repo.seedUser(models.RoleStudent)
	draft := repo.seedCourse(instructor.ID, models.StatusDraft)

	t.Run("anonymous viewer", func(t *testing.T) {
		if _, err := service.GetByID(ctx, draft.ID, nil); !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("expected draft hidden from anonymous viewers, got %v", err)
		}
	})

	t.Run("other student", func(t *testing.T) {
		if _, err := service.GetByID(ctx, draft.ID, stranger); !errors.Is(err, ErrCourseNotFound) {
			t.Errorf("expected draft hidden from strangers, got %v", err)
		}
	})

	t.Run("owner", func(t *testing.T) {
		if _, err := service.GetByID(ctx, draft.ID, instructor); err != nil {
			t.Errorf("owner must see own draft: %v", err)
		}
	})

	t.Run("admin", func(t *testing.T) {
		if _, err := service.GetByID(ctx, draft.ID, admin); err != nil {
			t.Errorf("admin must see any draft: %v", err)
		}
	})
}

func TestCourseList_PublishedOnly(t *testing.T) {
	repo, _, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	repo.seedCourse(instructor.ID, models.StatusDraft)
	repo.seedCourse(instructor.ID, models.StatusPublished)
	repo.seedCourse(instructor.ID, models.StatusPending)

	page, err := service.List(ctx, &validator.CourseListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("expected total 1 published course, got %d", page.Total)
	}
	for _, course := range page.Courses {
		if course.Status != models.StatusPublished {
			t.Errorf("public listing leaked status %s", course.Status)
		}
	}
}

func TestCourseDelete_Cascade(t *testing.T) {
	repo, _, service := newCourseFixture(t)
	ctx := context.Background()

	instructor := repo.seedUser(models.RoleInstructor)
	student := repo.seedUser(models.RoleStudent)
	course := repo.seedCourse(instructor.ID, models.StatusPublished)
	lesson := repo.seedLesson(course.ID, 1)
	enrollment := repo.seedEnrollment(student.ID, course.ID)
	if _, err := repo.LessonProgress().UpsertComplete(ctx, nil, enrollment.ID, lesson.ID, 5); err != nil {
		t.Fatalf("UpsertComplete failed: %v", err)
	}

	if err := service.Delete(ctx, course.ID, instructor.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.Course().GetByID(ctx, nil, course.ID); err == nil {
		t.Errorf("expected course gone")
	}
	if lessons, _ := repo.Lesson().GetByCourse(ctx, nil, course.ID); len(lessons) != 0 {
		t.Errorf("expected lessons gone, found %d", len(lessons))
	}
	if n, _ := repo.Enrollment().CountAll(ctx, nil); n != 0 {
		t.Errorf("expected enrollments gone, found %d", n)
	}
	if n, _ := repo.LessonProgress().CountCompleted(ctx, nil, enrollment.ID); n != 0 {
		t.Errorf("expected progress gone, found %d", n)
	}
}

func TestCourseDelete_RequiresOwnership(t *testing.T) {
	repo, _, service := newCourseFixture(t)

	owner := repo.seedUser(models.RoleInstructor)
	other := repo.seedUser(models.RoleInstructor)
	course := repo.seedCourse(owner.ID, models.StatusDraft)

	err := service.Delete(context.Background(), course.ID, other.ID)
	if !IsPermissionError(err) {
		t.Fatalf("expected permission error, got %v", err)
	}
}
