package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/studylab-api/internal/models"
	"github.com/noah-isme/studylab-api/internal/repository"
)

// fakeAdmissionStore keeps committed state in maps. Each WithinTx works on a copy that is only
// published when fn succeeds, mirroring rollback.
type fakeAdmissionStore struct {
	state fakeAdmissionState
	txs   int
}

type fakeAdmissionState struct {
	leads         map[string]models.Lead
	courses       map[string]models.Course
	batches       map[string]models.Batch
	users         map[string]models.User
	students      map[string]models.Student
	payments      []models.Payment
	installments  []models.Installment
	audits        []models.AuditLog
	createUserErr error
}

func newFakeAdmissionStore() *fakeAdmissionStore {
	return &fakeAdmissionStore{state: fakeAdmissionState{
		leads:    map[string]models.Lead{},
		courses:  map[string]models.Course{},
		batches:  map[string]models.Batch{},
		users:    map[string]models.User{},
		students: map[string]models.Student{},
	}}
}

func (f *fakeAdmissionStore) WithinTx(ctx context.Context, fn func(repository.AdmissionTx) error) error {
	f.txs++
	working := f.state.clone()
	if err := fn(&fakeAdmissionTx{state: &working}); err != nil {
		return err
	}
	f.state = working
	return nil
}

func (s fakeAdmissionState) clone() fakeAdmissionState {
	out := fakeAdmissionState{
		leads:         map[string]models.Lead{},
		courses:       map[string]models.Course{},
		batches:       map[string]models.Batch{},
		users:         map[string]models.User{},
		students:      map[string]models.Student{},
		payments:      append([]models.Payment(nil), s.payments...),
		installments:  append([]models.Installment(nil), s.installments...),
		audits:        append([]models.AuditLog(nil), s.audits...),
		createUserErr: s.createUserErr,
	}
	for k, v := range s.leads {
		out.leads[k] = v
	}
	for k, v := range s.courses {
		out.courses[k] = v
	}
	for k, v := range s.batches {
		out.batches[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.students {
		out.students[k] = v
	}
	return out
}

func (f *fakeAdmissionStore) paymentsFor(studentID string) []models.Payment {
	var out []models.Payment
	for _, p := range f.state.payments {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeAdmissionStore) installmentsFor(studentID string) []models.Installment {
	var out []models.Installment
	for _, i := range f.state.installments {
		if i.StudentID == studentID {
			out = append(out, i)
		}
	}
	return out
}

type fakeAdmissionTx struct {
	state *fakeAdmissionState
}

func (t *fakeAdmissionTx) LockLead(_ context.Context, id string) (*models.Lead, error) {
	lead, ok := t.state.leads[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &lead, nil
}

func (t *fakeAdmissionTx) FindCourse(_ context.Context, id string) (*models.Course, error) {
	course, ok := t.state.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (t *fakeAdmissionTx) FindBatch(_ context.Context, id string) (*models.Batch, error) {
	batch, ok := t.state.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &batch, nil
}

func (t *fakeAdmissionTx) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, u := range t.state.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeAdmissionTx) StudentCodeExists(_ context.Context, code string) (bool, error) {
	for _, s := range t.state.students {
		if s.StudentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeAdmissionTx) CreateUser(_ context.Context, user *models.User) error {
	if t.state.createUserErr != nil {
		return t.state.createUserErr
	}
	user.ID = fmt.Sprintf("user-%d", len(t.state.users)+1)
	t.state.users[user.ID] = *user
	return nil
}

func (t *fakeAdmissionTx) CreateStudent(_ context.Context, student *models.Student) error {
	student.ID = fmt.Sprintf("student-%d", len(t.state.students)+1)
	t.state.students[student.ID] = *student
	return nil
}

func (t *fakeAdmissionTx) SetLeadStatus(_ context.Context, id string, status models.LeadStatus) error {
	lead, ok := t.state.leads[id]
	if !ok {
		return sql.ErrNoRows
	}
	lead.Status = status
	t.state.leads[id] = lead
	return nil
}

func (t *fakeAdmissionTx) LockStudent(_ context.Context, id string) (*models.Student, error) {
	student, ok := t.state.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (t *fakeAdmissionTx) LockInstallment(_ context.Context, id string) (*models.Installment, error) {
	for _, item := range t.state.installments {
		if item.ID == id {
			copied := item
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeAdmissionTx) MarkInstallmentPaid(_ context.Context, id string, paidAt time.Time) error {
	for i := range t.state.installments {
		if t.state.installments[i].ID == id {
			t.state.installments[i].IsPaid = true
			t.state.installments[i].PaidAt = &paidAt
			return nil
		}
	}
	return errors.New("installment missing")
}

func (t *fakeAdmissionTx) CreatePayment(_ context.Context, payment *models.Payment) error {
	payment.ID = fmt.Sprintf("payment-%d", len(t.state.payments)+1)
	t.state.payments = append(t.state.payments, *payment)
	return nil
}

func (t *fakeAdmissionTx) SumPayments(_ context.Context, studentID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range t.state.payments {
		if p.StudentID == studentID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (t *fakeAdmissionTx) CreateInstallments(_ context.Context, items []models.Installment) error {
	for i := range items {
		items[i].ID = fmt.Sprintf("inst-%d", len(t.state.installments)+1)
		t.state.installments = append(t.state.installments, items[i])
	}
	return nil
}

func (t *fakeAdmissionTx) MarkFeePaid(_ context.Context, studentID string) error {
	student := t.state.students[studentID]
	student.IsFeePaid = true
	t.state.students[studentID] = student
	return nil
}

func (t *fakeAdmissionTx) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	t.state.audits = append(t.state.audits, *log)
	return nil
}

type recordingInvalidator struct {
	keys []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, keys ...string) {
	r.keys = append(r.keys, keys...)
}

func strPtr(s string) *string {
	return &s
}
