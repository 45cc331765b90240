package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepo is an in-memory repositories.Repository for service tests. It
// honors the same error contract as the real implementation (ErrNotFound,
// ErrDuplicate) so the service error mapping can be exercised end to end.
type fakeRepo struct {
	mu sync.Mutex

	users       map[uint]*models.User
	categories  map[uint]*models.Category
	courses     map[uint]*models.Course
	lessons     map[uint]*models.Lesson
	enrollments map[uint]*models.Enrollment
	progress    map[uint]*models.LessonProgress
	activities  map[uint]*models.StudentActivity
	auditLogs   []*models.AuditLog

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[uint]*models.User),
		categories:  make(map[uint]*models.Category),
		courses:     make(map[uint]*models.Course),
		lessons:     make(map[uint]*models.Lesson),
		enrollments: make(map[uint]*models.Enrollment),
		progress:    make(map[uint]*models.LessonProgress),
		activities:  make(map[uint]*models.StudentActivity),
	}
}

func (f *fakeRepo) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) User() repositories.UserRepository                     { return &fakeUserRepo{f} }
func (f *fakeRepo) Category() repositories.CategoryRepository             { return &fakeCategoryRepo{f} }
func (f *fakeRepo) Course() repositories.CourseRepository                 { return &fakeCourseRepo{f} }
func (f *fakeRepo) Lesson() repositories.LessonRepository                 { return &fakeLessonRepo{f} }
func (f *fakeRepo) Enrollment() repositories.EnrollmentRepository         { return &fakeEnrollmentRepo{f} }
func (f *fakeRepo) LessonProgress() repositories.LessonProgressRepository { return &fakeProgressRepo{f} }
func (f *fakeRepo) Activity() repositories.ActivityRepository             { return &fakeActivityRepo{f} }
func (f *fakeRepo) AuditLog() repositories.AuditLogRepository             { return &fakeAuditRepo{f} }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

// seed helpers

func (f *fakeRepo) seedUser(role models.UserRole) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	user := &models.User{
		ID:        id,
		Email:     fmt.Sprintf("user%d@example.com", id),
		Role:      role,
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeRepo) seedCourse(instructorID uint, status models.CourseStatus) *models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	course := &models.Course{
		ID:           f.id(),
		Title:        "Course",
		Slug:         "course",
		Status:       status,
		Level:        models.LevelBeginner,
		InstructorID: instructorID,
		CreatedAt:    time.Now(),
	}
	if instructor, ok := f.users[instructorID]; ok {
		course.Instructor = *instructor
	}
	f.courses[course.ID] = course
	return course
}

func (f *fakeRepo) seedLesson(courseID uint, order int) *models.Lesson {
	f.mu.Lock()
	defer f.mu.Unlock()
	lesson := &models.Lesson{
		ID:         f.id(),
		CourseID:   courseID,
		Title:      "Lesson",
		OrderIndex: order,
	}
	f.lessons[lesson.ID] = lesson
	return lesson
}

func (f *fakeRepo) seedEnrollment(studentID, courseID uint) *models.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	enrollment := &models.Enrollment{
		ID:         f.id(),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	f.enrollments[enrollment.ID] = enrollment
	if course, ok := f.courses[courseID]; ok {
		course.EnrollmentCount++
	}
	return enrollment
}

// ===== USER =====

type fakeUserRepo struct{ f *fakeRepo }

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = r.f.id()
	user.CreatedAt = time.Now()
	r.f.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, user := range r.f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, user := range r.f.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *user
	r.f.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	user, ok := r.f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsActive = active
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.User
	for _, user := range r.f.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.IsActive != nil && user.IsActive != *filters.IsActive {
			continue
		}
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, tx *gorm.DB, role models.UserRole, activeOnly bool) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, user := range r.f.users {
		if user.Role != role {
			continue
		}
		if activeOnly && !user.IsActive {
			continue
		}
		n++
	}
	return n, nil
}

// ===== CATEGORY =====

type fakeCategoryRepo struct{ f *fakeRepo }

func (r *fakeCategoryRepo) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.categories {
		if existing.Name == category.Name {
			return repositories.ErrDuplicate
		}
	}
	category.ID = r.f.id()
	r.f.categories[category.ID] = category
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	category, ok := r.f.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.categories[category.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *category
	r.f.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Category
	for _, category := range r.f.categories {
		copied := *category
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ===== COURSE =====

type fakeCourseRepo struct{ f *fakeRepo }

func (r *fakeCourseRepo) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	course.ID = r.f.id()
	course.CreatedAt = time.Now()
	if instructor, ok := r.f.users[course.InstructorID]; ok {
		course.Instructor = *instructor
	}
	copied := *course
	r.f.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.get(id)
}

func (r *fakeCourseRepo) get(id uint) (*models.Course, error) {
	course, ok := r.f.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *course
	if instructor, ok := r.f.users[course.InstructorID]; ok {
		copied.Instructor = *instructor
	}
	if course.CategoryID != nil {
		if category, ok := r.f.categories[*course.CategoryID]; ok {
			c := *category
			copied.Category = &c
		}
	}
	return &copied, nil
}

func (r *fakeCourseRepo) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	course, err := r.get(id)
	if err != nil {
		return nil, err
	}
	for _, lesson := range r.f.lessons {
		if lesson.CourseID == id {
			course.Lessons = append(course.Lessons, *lesson)
		}
	}
	sort.Slice(course.Lessons, func(i, j int) bool {
		return course.Lessons[i].OrderIndex < course.Lessons[j].OrderIndex
	})
	course.LessonCount = len(course.Lessons)
	for _, lesson := range course.Lessons {
		course.TotalDuration += lesson.DurationMinutes
	}
	return course, nil
}

func (r *fakeCourseRepo) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stored, ok := r.f.courses[course.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	copied := *course
	copied.EnrollmentCount = stored.EnrollmentCount
	r.f.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.CourseStatus, reason *string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	course, ok := r.f.courses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	course.Status = status
	course.RejectionReason = reason
	return nil
}

func (r *fakeCourseRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.courses, id)
	return nil
}

func (r *fakeCourseRepo) list(filters repositories.CourseFilters) []*models.Course {
	var out []*models.Course
	for id, course := range r.f.courses {
		if filters.Status != nil && course.Status != *filters.Status {
			continue
		}
		if filters.Level != nil && course.Level != *filters.Level {
			continue
		}
		if filters.InstructorID != nil && course.InstructorID != *filters.InstructorID {
			continue
		}
		if filters.CategoryID != nil && (course.CategoryID == nil || *course.CategoryID != *filters.CategoryID) {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(course.Title), strings.ToLower(filters.Search)) {
			continue
		}
		copied, _ := r.get(id)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func paginate(courses []*models.Course, limit, offset int) []*models.Course {
	if offset >= len(courses) {
		return nil
	}
	courses = courses[offset:]
	if limit > 0 && limit < len(courses) {
		courses = courses[:limit]
	}
	return courses
}

func (r *fakeCourseRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	all := r.list(filters)
	return paginate(all, filters.Limit, filters.Offset), int64(len(all)), nil
}

func (r *fakeCourseRepo) ListForAdmin(ctx context.Context, tx *gorm.DB, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return r.List(ctx, tx, filters)
}

func (r *fakeCourseRepo) GetByInstructor(ctx context.Context, tx *gorm.DB, instructorID uint, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	filters.InstructorID = &instructorID
	return r.List(ctx, tx, filters)
}

func (r *fakeCourseRepo) IncrementEnrollmentCount(ctx context.Context, tx *gorm.DB, id uint, delta int) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	course, ok := r.f.courses[id]
	if !ok {
		return repositories.ErrNotFound
	}
	course.EnrollmentCount += delta
	return nil
}

func (r *fakeCourseRepo) GetInstructorStats(ctx context.Context, tx *gorm.DB, instructorID uint) (*repositories.InstructorStats, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	stats := &repositories.InstructorStats{}
	for _, course := range r.f.courses {
		if course.InstructorID != instructorID {
			continue
		}
		stats.TotalCourses++
		switch course.Status {
		case models.StatusPublished:
			stats.PublishedCourses++
		case models.StatusDraft:
			stats.DraftCourses++
		}
		stats.TotalEnrollments += course.EnrollmentCount
	}
	return stats, nil
}

func (r *fakeCourseRepo) GetReportRows(ctx context.Context, tx *gorm.DB) ([]*repositories.CourseReportRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*repositories.CourseReportRow
	for _, course := range r.f.courses {
		out = append(out, &repositories.CourseReportRow{
			CourseID:        course.ID,
			Title:           course.Title,
			Status:          string(course.Status),
			EnrollmentCount: course.EnrollmentCount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (r *fakeCourseRepo) CountByStatus(ctx context.Context, tx *gorm.DB, status models.CourseStatus) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, course := range r.f.courses {
		if course.Status == status {
			n++
		}
	}
	return n, nil
}

// ===== LESSON =====

type fakeLessonRepo struct{ f *fakeRepo }

func (r *fakeLessonRepo) Create(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	lesson.ID = r.f.id()
	copied := *lesson
	r.f.lessons[lesson.ID] = &copied
	return nil
}

func (r *fakeLessonRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lesson, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	lesson, ok := r.f.lessons[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *lesson
	return &copied, nil
}

func (r *fakeLessonRepo) Update(ctx context.Context, tx *gorm.DB, lesson *models.Lesson) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.lessons[lesson.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *lesson
	r.f.lessons[lesson.ID] = &copied
	return nil
}

func (r *fakeLessonRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.lessons[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.lessons, id)
	return nil
}

func (r *fakeLessonRepo) GetByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Lesson, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Lesson
	for _, lesson := range r.f.lessons {
		if lesson.CourseID == courseID {
			copied := *lesson
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeLessonRepo) CountByCourse(ctx context.Context, tx *gorm.DB, courseID uint) (int64, error) {
	lessons, _ := r.GetByCourse(ctx, tx, courseID)
	return int64(len(lessons)), nil
}

func (r *fakeLessonRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, lesson := range r.f.lessons {
		if lesson.CourseID == courseID {
			delete(r.f.lessons, id)
		}
	}
	return nil
}

func (r *fakeLessonRepo) NextOrderIndex(ctx context.Context, tx *gorm.DB, courseID uint) (int, error) {
	lessons, _ := r.GetByCourse(ctx, tx, courseID)
	max := 0
	for _, lesson := range lessons {
		if lesson.OrderIndex > max {
			max = lesson.OrderIndex
		}
	}
	return max + 1, nil
}

func (r *fakeLessonRepo) Reorder(ctx context.Context, tx *gorm.DB, courseID uint, lessonIDs []uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for i, id := range lessonIDs {
		lesson, ok := r.f.lessons[id]
		if !ok || lesson.CourseID != courseID {
			return repositories.ErrNotFound
		}
		lesson.OrderIndex = i + 1
	}
	return nil
}

// ===== ENROLLMENT =====

type fakeEnrollmentRepo struct{ f *fakeRepo }

func (r *fakeEnrollmentRepo) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.enrollments {
		if existing.StudentID == enrollment.StudentID && existing.CourseID == enrollment.CourseID {
			return repositories.ErrDuplicate
		}
	}
	enrollment.ID = r.f.id()
	enrollment.EnrolledAt = time.Now()
	copied := *enrollment
	r.f.enrollments[enrollment.ID] = &copied
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Enrollment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	enrollment, ok := r.f.enrollments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *enrollment
	return &copied, nil
}

func (r *fakeEnrollmentRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (*models.Enrollment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, enrollment := range r.f.enrollments {
		if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
			copied := *enrollment
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeEnrollmentRepo) Exists(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error) {
	_, err := r.GetByStudentAndCourse(ctx, tx, studentID, courseID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeEnrollmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.enrollments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.enrollments, id)
	return nil
}

func (r *fakeEnrollmentRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.Enrollment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Enrollment
	for _, enrollment := range r.f.enrollments {
		if enrollment.StudentID != studentID {
			continue
		}
		copied := *enrollment
		if course, ok := r.f.courses[enrollment.CourseID]; ok {
			copied.Course = *course
		}
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeEnrollmentRepo) UpdateProgress(ctx context.Context, tx *gorm.DB, id uint, progress float64, completedAt *bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	enrollment, ok := r.f.enrollments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	enrollment.Progress = progress
	if completedAt != nil {
		if *completedAt {
			now := time.Now()
			enrollment.CompletedAt = &now
		} else {
			enrollment.CompletedAt = nil
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) TouchLastAccessed(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	enrollment, ok := r.f.enrollments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	now := time.Now()
	enrollment.LastAccessedAt = &now
	return nil
}

func (r *fakeEnrollmentRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, enrollment := range r.f.enrollments {
		if enrollment.CourseID == courseID {
			delete(r.f.enrollments, id)
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, enrollment := range r.f.enrollments {
		if enrollment.StudentID == studentID {
			delete(r.f.enrollments, id)
		}
	}
	return nil
}

func (r *fakeEnrollmentRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return int64(len(r.f.enrollments)), nil
}

func (r *fakeEnrollmentRepo) CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, enrollment := range r.f.enrollments {
		if enrollment.CompletedAt != nil {
			n++
		}
	}
	return n, nil
}

// ===== LESSON PROGRESS =====

type fakeProgressRepo struct{ f *fakeRepo }

func (r *fakeProgressRepo) find(enrollmentID, lessonID uint) *models.LessonProgress {
	for _, row := range r.f.progress {
		if row.EnrollmentID == enrollmentID && row.LessonID == lessonID {
			return row
		}
	}
	return nil
}

func (r *fakeProgressRepo) GetByEnrollmentAndLesson(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint) (*models.LessonProgress, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	row := r.find(enrollmentID, lessonID)
	if row == nil {
		return nil, repositories.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeProgressRepo) UpsertComplete(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (*models.LessonProgress, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	row := r.find(enrollmentID, lessonID)
	if row == nil {
		row = &models.LessonProgress{
			ID:           r.f.id(),
			EnrollmentID: enrollmentID,
			LessonID:     lessonID,
		}
		r.f.progress[row.ID] = row
	}
	row.IsCompleted = true
	row.TimeSpentSeconds += timeSpent
	if row.CompletedAt == nil {
		now := time.Now()
		row.CompletedAt = &now
	}
	copied := *row
	return &copied, nil
}

func (r *fakeProgressRepo) UpsertTime(ctx context.Context, tx *gorm.DB, enrollmentID, lessonID uint, timeSpent int) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	row := r.find(enrollmentID, lessonID)
	if row != nil {
		row.TimeSpentSeconds += timeSpent
		return false, nil
	}
	row = &models.LessonProgress{
		ID:               r.f.id(),
		EnrollmentID:     enrollmentID,
		LessonID:         lessonID,
		TimeSpentSeconds: timeSpent,
	}
	r.f.progress[row.ID] = row
	return true, nil
}

func (r *fakeProgressRepo) CountCompleted(ctx context.Context, tx *gorm.DB, enrollmentID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, row := range r.f.progress {
		if row.EnrollmentID == enrollmentID && row.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) GetLessonsWithProgress(ctx context.Context, tx *gorm.DB, enrollmentID, courseID uint) ([]*repositories.LessonWithProgress, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var lessons []*models.Lesson
	for _, lesson := range r.f.lessons {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].OrderIndex < lessons[j].OrderIndex })

	out := make([]*repositories.LessonWithProgress, 0, len(lessons))
	for _, lesson := range lessons {
		item := &repositories.LessonWithProgress{Lesson: *lesson}
		if row := r.find(enrollmentID, lesson.ID); row != nil {
			item.IsCompleted = row.IsCompleted
			item.TimeSpentSeconds = row.TimeSpentSeconds
			item.CompletedAt = row.CompletedAt
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeProgressRepo) DeleteByEnrollment(ctx context.Context, tx *gorm.DB, enrollmentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, row := range r.f.progress {
		if row.EnrollmentID == enrollmentID {
			delete(r.f.progress, id)
		}
	}
	return nil
}

func (r *fakeProgressRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, row := range r.f.progress {
		if enrollment, ok := r.f.enrollments[row.EnrollmentID]; ok && enrollment.CourseID == courseID {
			delete(r.f.progress, id)
		}
	}
	return nil
}

func (r *fakeProgressRepo) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, row := range r.f.progress {
		if enrollment, ok := r.f.enrollments[row.EnrollmentID]; ok && enrollment.StudentID == studentID {
			delete(r.f.progress, id)
		}
	}
	return nil
}

// ===== ACTIVITY =====

type fakeActivityRepo struct{ f *fakeRepo }

func (r *fakeActivityRepo) Create(ctx context.Context, tx *gorm.DB, activity *models.StudentActivity) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	activity.ID = r.f.id()
	activity.CreatedAt = time.Now()
	copied := *activity
	r.f.activities[activity.ID] = &copied
	return nil
}

func (r *fakeActivityRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentActivity, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	activity, ok := r.f.activities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *activity
	return &copied, nil
}

func (r *fakeActivityRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ActivityFilters) ([]*models.StudentActivity, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.StudentActivity
	for _, activity := range r.f.activities {
		if filters.StudentID != nil && activity.StudentID != *filters.StudentID {
			continue
		}
		if filters.CourseID != nil && activity.CourseID != *filters.CourseID {
			continue
		}
		if filters.Type != nil && activity.ActivityType != *filters.Type {
			continue
		}
		copied := *activity
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeActivityRepo) GetRecent(ctx context.Context, tx *gorm.DB, studentID uint, limit int) ([]*models.StudentActivity, error) {
	rows, _, err := r.List(ctx, tx, repositories.ActivityFilters{StudentID: &studentID})
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *fakeActivityRepo) GetDailyCounts(ctx context.Context, tx *gorm.DB, studentID uint, periodDays int) ([]*repositories.ActivityDayCount, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	since := time.Now().AddDate(0, 0, -periodDays)
	counts := make(map[string]int64)
	for _, activity := range r.f.activities {
		if activity.StudentID != studentID || activity.CreatedAt.Before(since) {
			continue
		}
		counts[activity.CreatedAt.Format("2006-01-02")]++
	}
	var out []*repositories.ActivityDayCount
	for day, count := range counts {
		d, _ := time.Parse("2006-01-02", day)
		out = append(out, &repositories.ActivityDayCount{Day: d, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *fakeActivityRepo) GetNotifications(ctx context.Context, tx *gorm.DB, studentID uint, unreadOnly bool, limit int) ([]*models.StudentActivity, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.StudentActivity
	for _, activity := range r.f.activities {
		if activity.StudentID != studentID || !activity.ActivityType.IsNotification() {
			continue
		}
		if unreadOnly && activity.ReadAt != nil {
			continue
		}
		copied := *activity
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeActivityRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	activity, ok := r.f.activities[id]
	if !ok || activity.StudentID != studentID || !activity.ActivityType.IsNotification() {
		return repositories.ErrNotFound
	}
	if activity.ReadAt == nil {
		now := time.Now()
		activity.ReadAt = &now
	}
	return nil
}

func (r *fakeActivityRepo) ExistsForPair(ctx context.Context, tx *gorm.DB, studentID, courseID uint, activityType models.ActivityType) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, activity := range r.f.activities {
		if activity.StudentID == studentID && activity.CourseID == courseID && activity.ActivityType == activityType {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeActivityRepo) DeleteByCourse(ctx context.Context, tx *gorm.DB, courseID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, activity := range r.f.activities {
		if activity.CourseID == courseID {
			delete(r.f.activities, id)
		}
	}
	return nil
}

func (r *fakeActivityRepo) DeleteByStudent(ctx context.Context, tx *gorm.DB, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, activity := range r.f.activities {
		if activity.StudentID == studentID {
			delete(r.f.activities, id)
		}
	}
	return nil
}

// ===== AUDIT LOG =====

type fakeAuditRepo struct{ f *fakeRepo }

func (r *fakeAuditRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	entry.ID = r.f.id()
	entry.CreatedAt = time.Now()
	copied := *entry
	r.f.auditLogs = append(r.f.auditLogs, &copied)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AuditLogFilters) ([]*models.AuditLog, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.AuditLog
	for _, entry := range r.f.auditLogs {
		if filters.Action != nil && entry.Action != *filters.Action {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}
