package service

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/yourorg/internhub/internal/domain"
	"github.com/yourorg/internhub/internal/security/audit"
)

func testAudit() *audit.Logger {
	return audit.NewLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type memUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*domain.User{}, byEmail: map[string]*domain.User{}}
}

func (m *memUserRepo) Create(u *domain.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return fmt.Errorf("email: %w", domain.ErrAlreadyExists)
	}
	if u.ID == "" {
		u.ID = "u-" + u.Email
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *memUserRepo) GetByID(id string) (*domain.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}
func (m *memUserRepo) GetByEmail(email string) (*domain.User, error) {
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}
func (m *memUserRepo) Update(u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	u.UpdatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}
func (m *memUserRepo) Delete(id string) error {
	u, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	delete(m.byEmail, u.Email)
	delete(m.byID, id)
	return nil
}
func (m *memUserRepo) List() ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

type memRoleRepo struct {
	byUser map[string]*domain.RoleRecord
}

func newMemRoleRepo() *memRoleRepo {
	return &memRoleRepo{byUser: map[string]*domain.RoleRecord{}}
}

func (m *memRoleRepo) Create(r *domain.RoleRecord) error {
	if _, ok := m.byUser[r.UserID]; ok {
		return domain.ErrRoleAlreadySet
	}
	r.CreatedAt = time.Now()
	m.byUser[r.UserID] = r
	return nil
}
func (m *memRoleRepo) GetByUserID(userID string) (*domain.RoleRecord, error) {
	if r, ok := m.byUser[userID]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("role: %w", domain.ErrNotFound)
}

type memOrgRepo struct {
	byID   map[string]*domain.OrganizationProfile
	byUser map[string]*domain.OrganizationProfile
}

func newMemOrgRepo() *memOrgRepo {
	return &memOrgRepo{
		byID:   map[string]*domain.OrganizationProfile{},
		byUser: map[string]*domain.OrganizationProfile{},
	}
}

func (m *memOrgRepo) Create(p *domain.OrganizationProfile) error {
	if _, ok := m.byUser[p.UserID]; ok {
		return fmt.Errorf("organization profile: %w", domain.ErrAlreadyExists)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byID[p.ID] = p
	m.byUser[p.UserID] = p
	return nil
}
func (m *memOrgRepo) GetByID(id string) (*domain.OrganizationProfile, error) {
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
}
func (m *memOrgRepo) GetByUserID(userID string) (*domain.OrganizationProfile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
}
func (m *memOrgRepo) Update(p *domain.OrganizationProfile) error {
	if _, ok := m.byID[p.ID]; !ok {
		return fmt.Errorf("organization profile: %w", domain.ErrNotFound)
	}
	p.UpdatedAt = time.Now()
	m.byID[p.ID] = p
	m.byUser[p.UserID] = p
	return nil
}
func (m *memOrgRepo) UpdateApproval(id string, status domain.ApprovalStatus, reason string, approvedAt *time.Time) (*domain.OrganizationProfile, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("organization profile: %w", domain.ErrNotFound)
	}
	p.ApprovalStatus = status
	p.RejectionReason = reason
	p.ApprovedAt = approvedAt
	p.UpdatedAt = time.Now()
	return p, nil
}
func (m *memOrgRepo) ListByApproval(status domain.ApprovalStatus) ([]*domain.OrganizationProfile, error) {
	out := []*domain.OrganizationProfile{}
	for _, p := range m.byID {
		if p.ApprovalStatus == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memInternRepo struct {
	byUser map[string]*domain.InternProfile
}

func newMemInternRepo() *memInternRepo {
	return &memInternRepo{byUser: map[string]*domain.InternProfile{}}
}

func (m *memInternRepo) Create(p *domain.InternProfile) error {
	if _, ok := m.byUser[p.UserID]; ok {
		return fmt.Errorf("intern profile: %w", domain.ErrAlreadyExists)
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.byUser[p.UserID] = p
	return nil
}
func (m *memInternRepo) GetByUserID(userID string) (*domain.InternProfile, error) {
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("intern profile: %w", domain.ErrNotFound)
}
func (m *memInternRepo) Update(p *domain.InternProfile) error {
	if _, ok := m.byUser[p.UserID]; !ok {
		return fmt.Errorf("intern profile: %w", domain.ErrNotFound)
	}
	p.UpdatedAt = time.Now()
	m.byUser[p.UserID] = p
	return nil
}

type memInternshipRepo struct {
	byID map[string]*domain.Internship
	orgs *memOrgRepo
}

func newMemInternshipRepo(orgs *memOrgRepo) *memInternshipRepo {
	return &memInternshipRepo{byID: map[string]*domain.Internship{}, orgs: orgs}
}

func (m *memInternshipRepo) Create(i *domain.Internship) error {
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt
	m.byID[i.ID] = i
	return nil
}
func (m *memInternshipRepo) GetByID(id string) (*domain.Internship, error) {
	if i, ok := m.byID[id]; ok {
		return i, nil
	}
	return nil, fmt.Errorf("internship: %w", domain.ErrNotFound)
}
func (m *memInternshipRepo) Update(i *domain.Internship) error {
	if _, ok := m.byID[i.ID]; !ok {
		return fmt.Errorf("internship: %w", domain.ErrNotFound)
	}
	i.UpdatedAt = time.Now()
	m.byID[i.ID] = i
	return nil
}
func (m *memInternshipRepo) Delete(id string) error {
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("internship: %w", domain.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}
func (m *memInternshipRepo) ListByOrganization(organizationID string) ([]*domain.Internship, error) {
	out := []*domain.Internship{}
	for _, i := range m.byID {
		if i.OrganizationID == organizationID {
			out = append(out, i)
		}
	}
	return out, nil
}
func (m *memInternshipRepo) ListActive(filter domain.BrowseFilter, now time.Time) ([]*domain.Internship, error) {
	out := []*domain.Internship{}
	for _, i := range m.byID {
		if i.Status != domain.InternshipActive || !i.ApplicationDeadline.After(now) {
			continue
		}
		if m.orgs != nil {
			org, err := m.orgs.GetByID(i.OrganizationID)
			if err != nil || org.ApprovalStatus != domain.ApprovalApproved {
				continue
			}
		}
		if filter.Location != "" && i.Location != filter.Location {
			continue
		}
		if filter.WorkType != "" && i.WorkType != filter.WorkType {
			continue
		}
		if filter.Skill != "" && !containsString(i.Skills, filter.Skill) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}
func (m *memInternshipRepo) DeactivateExpired(now time.Time) (int, error) {
	n := 0
	for _, i := range m.byID {
		if i.Status == domain.InternshipActive && !i.ApplicationDeadline.After(now) {
			i.Status = domain.InternshipInactive
			n++
		}
	}
	return n, nil
}
func (m *memInternshipRepo) CountActive() (int, error) {
	n := 0
	for _, i := range m.byID {
		if i.Status == domain.InternshipActive {
			n++
		}
	}
	return n, nil
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

type memApplicationRepo struct {
	byID        map[string]*domain.Application
	internships *memInternshipRepo
}

func newMemApplicationRepo(internships *memInternshipRepo) *memApplicationRepo {
	return &memApplicationRepo{byID: map[string]*domain.Application{}, internships: internships}
}

func (m *memApplicationRepo) Create(a *domain.Application) error {
	for _, existing := range m.byID {
		if existing.ApplicantID == a.ApplicantID &&
			existing.InternshipID == a.InternshipID &&
			existing.Status != domain.StatusWithdrawn {
			return domain.ErrAlreadyApplied
		}
	}
	a.AppliedAt = time.Now()
	a.UpdatedAt = a.AppliedAt
	m.byID[a.ID] = a
	return nil
}
func (m *memApplicationRepo) GetByID(id string) (*domain.Application, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("application: %w", domain.ErrNotFound)
}
func (m *memApplicationRepo) UpdateStatus(id string, status domain.ApplicationStatus) (*domain.Application, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("application: %w", domain.ErrNotFound)
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return a, nil
}
func (m *memApplicationRepo) ListByApplicant(applicantID string) ([]*domain.Application, error) {
	out := []*domain.Application{}
	for _, a := range m.byID {
		if a.ApplicantID == applicantID {
			out = append(out, a)
		}
	}
	return out, nil
}
func (m *memApplicationRepo) ListByOrganization(organizationID string, internshipID string) ([]*domain.Application, error) {
	out := []*domain.Application{}
	for _, a := range m.byID {
		if internshipID != "" && a.InternshipID != internshipID {
			continue
		}
		internship, err := m.internships.GetByID(a.InternshipID)
		if err != nil || internship.OrganizationID != organizationID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
func (m *memApplicationRepo) CountByStatusForOrganization(organizationID string) (domain.StatusCounts, error) {
	counts := domain.StatusCounts{}
	for _, a := range m.byID {
		internship, err := m.internships.GetByID(a.InternshipID)
		if err != nil || internship.OrganizationID != organizationID {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}

type memConversationRepo struct {
	byID   map[string]*domain.Conversation
	byPair map[string]*domain.Conversation
}

func newMemConversationRepo() *memConversationRepo {
	return &memConversationRepo{
		byID:   map[string]*domain.Conversation{},
		byPair: map[string]*domain.Conversation{},
	}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func (m *memConversationRepo) GetOrCreate(p1, p2 string) (*domain.Conversation, error) {
	key := pairKey(p1, p2)
	if c, ok := m.byPair[key]; ok {
		return c, nil
	}
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	c := &domain.Conversation{
		ID:             "conv-" + key,
		Participant1ID: p1,
		Participant2ID: p2,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.byID[c.ID] = c
	m.byPair[key] = c
	return c, nil
}
func (m *memConversationRepo) GetByID(id string) (*domain.Conversation, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("conversation: %w", domain.ErrNotFound)
}
func (m *memConversationRepo) ListByParticipant(userID string) ([]*domain.Conversation, error) {
	out := []*domain.Conversation{}
	for _, c := range m.byID {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
func (m *memConversationRepo) Touch(id string, at time.Time) error {
	c, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("conversation: %w", domain.ErrNotFound)
	}
	c.UpdatedAt = at
	return nil
}

type memMessageRepo struct {
	messages []*domain.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{}
}

func (m *memMessageRepo) Create(msg *domain.Message) error {
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}
func (m *memMessageRepo) ListByConversation(conversationID string, limit int) ([]*domain.Message, error) {
	out := []*domain.Message{}
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
func (m *memMessageRepo) MarkRead(conversationID, readerID string, at time.Time) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID && msg.ReadAt == nil {
			t := at
			msg.ReadAt = &t
			n++
		}
	}
	return n, nil
}
