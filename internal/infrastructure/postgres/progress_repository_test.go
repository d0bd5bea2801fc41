package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/mhiraki-dev/mediacore/internal/domain/model"
	"github.com/mhiraki-dev/mediacore/internal/domain/repository"
)

func TestProgressRepository_Upsert(t *testing.T) {
	tests := []struct {
		name     string
		progress *model.Progress
		mockFn   func(mock pgxmock.PgxPoolIface, p *model.Progress)
		wantErr  bool
	}{
		{
			name: "successful upsert",
			progress: &model.Progress{
				SubjectID: "u123",
				AssetID:   "a456",
				Percent:   42,
				UpdatedAt: time.Now(),
			},
			mockFn: func(mock pgxmock.PgxPoolIface, p *model.Progress) {
				mock.ExpectExec("INSERT INTO playback_progress").
					WithArgs(p.SubjectID, p.AssetID, p.Percent, p.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "conflict path updates in place",
			progress: &model.Progress{
				SubjectID: "u123",
				AssetID:   "a456",
				Percent:   47,
				UpdatedAt: time.Now(),
			},
			mockFn: func(mock pgxmock.PgxPoolIface, p *model.Progress) {
				mock.ExpectExec("INSERT INTO playback_progress").
					WithArgs(p.SubjectID, p.AssetID, p.Percent, p.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "database error surfaces",
			progress: &model.Progress{
				SubjectID: "u123",
				AssetID:   "a456",
				Percent:   42,
				UpdatedAt: time.Now(),
			},
			mockFn: func(mock pgxmock.PgxPoolIface, p *model.Progress) {
				mock.ExpectExec("INSERT INTO playback_progress").
					WithArgs(p.SubjectID, p.AssetID, p.Percent, p.UpdatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			tt.mockFn(mock, tt.progress)

			repo := NewProgressRepository(mock)
			err = repo.Upsert(context.Background(), tt.progress)

			if (err != nil) != tt.wantErr {
				t.Errorf("Upsert() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestProgressRepository_Upsert_Idempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	p := &model.Progress{
		SubjectID: "u123",
		AssetID:   "a456",
		Percent:   42,
		UpdatedAt: time.Now(),
	}

	// Both calls carry identical values; the second resolves via the
	// conflict path and must succeed the same way.
	mock.ExpectExec("INSERT INTO playback_progress").
		WithArgs(p.SubjectID, p.AssetID, p.Percent, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO playback_progress").
		WithArgs(p.SubjectID, p.AssetID, p.Percent, p.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewProgressRepository(mock)
	if err := repo.Upsert(context.Background(), p); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}
	if err := repo.Upsert(context.Background(), p); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestProgressRepository_GetByAsset(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		mockFn  func(mock pgxmock.PgxPoolIface)
		want    *model.Progress
		wantErr error
	}{
		{
			name: "record found",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"subject_id", "asset_id", "percent", "updated_at"}).
					AddRow("u123", "a456", 42, now)
				mock.ExpectQuery("SELECT subject_id, asset_id, percent, updated_at").
					WithArgs("u123", "a456").
					WillReturnRows(rows)
			},
			want: &model.Progress{SubjectID: "u123", AssetID: "a456", Percent: 42, UpdatedAt: now},
		},
		{
			name: "record not found",
			mockFn: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT subject_id, asset_id, percent, updated_at").
					WithArgs("u123", "a456").
					WillReturnRows(pgxmock.NewRows([]string{"subject_id", "asset_id", "percent", "updated_at"}))
			},
			wantErr: repository.ErrProgressNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			if err != nil {
				t.Fatalf("failed to create mock pool: %v", err)
			}
			defer mock.Close()

			tt.mockFn(mock)

			repo := NewProgressRepository(mock)
			got, err := repo.GetByAsset(context.Background(), "u123", "a456")

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("GetByAsset() error = %v, want %v", err, tt.wantErr)
			}
			if tt.want != nil {
				if got.Percent != tt.want.Percent || got.AssetID != tt.want.AssetID {
					t.Errorf("GetByAsset() = %+v, want %+v", got, tt.want)
				}
			}
		})
	}
}

func TestProgressRepository_ListBySubject(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows([]string{"subject_id", "asset_id", "percent", "updated_at"}).
		AddRow("u123", "a1", 90, now).
		AddRow("u123", "a2", 15, now.Add(-time.Hour))

	mock.ExpectQuery("SELECT subject_id, asset_id, percent, updated_at").
		WithArgs("u123").
		WillReturnRows(rows)

	repo := NewProgressRepository(mock)
	got, err := repo.ListBySubject(context.Background(), "u123")
	if err != nil {
		t.Fatalf("ListBySubject() error = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("ListBySubject() returned %d records, want 2", len(got))
	}
	if got[0].AssetID != "a1" || got[1].AssetID != "a2" {
		t.Errorf("ListBySubject() order = %s, %s; want a1, a2", got[0].AssetID, got[1].AssetID)
	}
}

func TestProgressRepository_ListBySubject_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT subject_id, asset_id, percent, updated_at").
		WithArgs("u999").
		WillReturnRows(pgxmock.NewRows([]string{"subject_id", "asset_id", "percent", "updated_at"}))

	repo := NewProgressRepository(mock)
	got, err := repo.ListBySubject(context.Background(), "u999")
	if err != nil {
		t.Fatalf("ListBySubject() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListBySubject() returned %d records, want 0", len(got))
	}
}
