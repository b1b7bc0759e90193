package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"launchpad/internal/domain"
)

type mockEnrollmentRepo struct {
	rows map[string]domain.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{rows: make(map[string]domain.Enrollment)}
}

func (m *mockEnrollmentRepo) put(row domain.Enrollment) {
	m.rows[row.UserID+"/"+row.CourseID] = row
}

func (m *mockEnrollmentRepo) Get(_ context.Context, userID, courseID string) (domain.Enrollment, error) {
	row, ok := m.rows[userID+"/"+courseID]
	if !ok {
		return domain.Enrollment{}, pgx.ErrNoRows
	}
	return row, nil
}

func TestResolve_RowStatuses(t *testing.T) {
	future := time.Now().UTC().Add(48 * time.Hour)
	past := time.Now().UTC().Add(-48 * time.Hour)

	cases := []struct {
		name       string
		row        domain.Enrollment
		wantStatus string
	}{
		{"active", domain.Enrollment{Status: domain.EnrollmentActive}, AccessEnrolled},
		{"active with future expiry", domain.Enrollment{Status: domain.EnrollmentActive, ExpiresAt: &future}, AccessEnrolled},
		{"active past expiry", domain.Enrollment{Status: domain.EnrollmentActive, ExpiresAt: &past}, AccessExpired},
		{"gifted", domain.Enrollment{Status: domain.EnrollmentGifted}, AccessEnrolled},
		{"trialing", domain.Enrollment{Status: domain.EnrollmentTrialing, ExpiresAt: &future}, AccessTrial},
		{"trialing past expiry", domain.Enrollment{Status: domain.EnrollmentTrialing, ExpiresAt: &past}, AccessExpired},
		{"canceled", domain.Enrollment{Status: domain.EnrollmentCanceled}, AccessExpired},
		{"expired", domain.Enrollment{Status: domain.EnrollmentExpired}, AccessExpired},
		{"unknown status", domain.Enrollment{Status: "weird"}, AccessExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.row.UserID = "u1"
			tc.row.CourseID = "c1"
			enrollments := newMockEnrollmentRepo()
			enrollments.put(tc.row)
			svc := NewEnrollmentService(enrollments, newMockUserRepo())

			got, err := svc.Resolve(context.Background(), "u1", "c1")
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if got.Status != tc.wantStatus {
				t.Fatalf("expected %q, got %q", tc.wantStatus, got.Status)
			}
		})
	}
}

func TestResolve_MembershipFallback(t *testing.T) {
	users := newMockUserRepo()
	_ = users.Create(context.Background(), domain.User{ID: "pro", Membership: domain.MembershipPro})
	_ = users.Create(context.Background(), domain.User{ID: "free"})
	svc := NewEnrollmentService(newMockEnrollmentRepo(), users)

	got, err := svc.Resolve(context.Background(), "pro", "c1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != AccessEnrolled || got.Source != sourceSubscription {
		t.Fatalf("pro membership should resolve enrolled/subscription, got %+v", got)
	}

	got, err = svc.Resolve(context.Background(), "free", "c1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != AccessNotEnrolled {
		t.Fatalf("free user should be not_enrolled, got %+v", got)
	}

	// Usuario inexistente tampoco es un error: estado total.
	got, err = svc.Resolve(context.Background(), "ghost", "c1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != AccessNotEnrolled {
		t.Fatalf("unknown user should be not_enrolled, got %+v", got)
	}
}

func TestResolve_RowWinsOverMembership(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	enrollments := newMockEnrollmentRepo()
	enrollments.put(domain.Enrollment{UserID: "pro", CourseID: "c1", Status: domain.EnrollmentCanceled, ExpiresAt: &past})
	users := newMockUserRepo()
	_ = users.Create(context.Background(), domain.User{ID: "pro", Membership: domain.MembershipPro})
	svc := NewEnrollmentService(enrollments, users)

	got, err := svc.Resolve(context.Background(), "pro", "c1")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.Status != AccessExpired {
		t.Fatalf("explicit row should win over membership, got %+v", got)
	}
}

func TestResolvedEnrollment_IsEnrolled(t *testing.T) {
	if !(ResolvedEnrollment{Status: AccessEnrolled}).IsEnrolled() {
		t.Fatalf("enrolled grants access")
	}
	if !(ResolvedEnrollment{Status: AccessTrial}).IsEnrolled() {
		t.Fatalf("trial grants access")
	}
	if (ResolvedEnrollment{Status: AccessExpired}).IsEnrolled() {
		t.Fatalf("expired must not grant access")
	}
	if (ResolvedEnrollment{Status: AccessNotEnrolled}).IsEnrolled() {
		t.Fatalf("not_enrolled must not grant access")
	}
}
