package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/avvvet/hobheap-services/internal/notesvc/models"
)

// MemoryManager keeps every table in process memory. Units of work run one
// at a time and a failed one is undone by restoring a snapshot, so it gives
// the same commit/rollback behaviour as Postgres without a server.
type MemoryManager struct {
	mu    sync.Mutex
	state *memState
	now   func() time.Time
}

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{state: newMemState(), now: time.Now}
}

func (m *MemoryManager) RunInTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	defer func() {
		if p := recover(); p != nil {
			m.state = snapshot
			panic(p)
		}
		if err != nil {
			m.state = snapshot
		}
	}()

	return fn(ctx, &memRepositories{s: m.state, now: m.now})
}

type cardTagKey struct {
	cardID, tagID int64
}

type memState struct {
	lastID     map[string]int64
	users      map[int64]models.User
	cards      map[int64]models.Card
	versions   map[int64][]models.CardVersion
	documents  map[int64]models.Document
	placements map[int64]models.DocumentCard
	tags       map[int64]models.Tag
	cardTags   map[cardTagKey]struct{}
	otps       map[int64]models.OTP
}

func newMemState() *memState {
	return &memState{
		lastID:     map[string]int64{},
		users:      map[int64]models.User{},
		cards:      map[int64]models.Card{},
		versions:   map[int64][]models.CardVersion{},
		documents:  map[int64]models.Document{},
		placements: map[int64]models.DocumentCard{},
		tags:       map[int64]models.Tag{},
		cardTags:   map[cardTagKey]struct{}{},
		otps:       map[int64]models.OTP{},
	}
}

// clone copies every table. Entity structs are copied by value; their
// pointer fields are only ever replaced, never written through.
func (s *memState) clone() *memState {
	versions := make(map[int64][]models.CardVersion, len(s.versions))
	for k, v := range s.versions {
		versions[k] = slices.Clone(v)
	}
	return &memState{
		lastID:     maps.Clone(s.lastID),
		users:      maps.Clone(s.users),
		cards:      maps.Clone(s.cards),
		versions:   versions,
		documents:  maps.Clone(s.documents),
		placements: maps.Clone(s.placements),
		tags:       maps.Clone(s.tags),
		cardTags:   maps.Clone(s.cardTags),
		otps:       maps.Clone(s.otps),
	}
}

func (s *memState) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

type memRepositories struct {
	s   *memState
	now func() time.Time
}

func (r *memRepositories) Users() UserRepository { return &memUsers{r} }

func (r *memRepositories) Cards() CardRepository { return &memCards{r} }

func (r *memRepositories) Versions() CardVersionRepository { return &memVersions{r} }

func (r *memRepositories) Documents() DocumentRepository { return &memDocuments{r} }

func (r *memRepositories) DocumentCards() DocumentCardRepository { return &memDocumentCards{r} }

func (r *memRepositories) Tags() TagRepository { return &memTags{r} }

func (r *memRepositories) OTPs() OTPRepository { return &memOTPs{r} }

func page[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// users

type memUsers struct{ *memRepositories }

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return ErrAlreadyExists
		}
		if u.Phone != nil && existing.Phone != nil && *u.Phone == *existing.Phone {
			return ErrPhoneTaken
		}
	}
	now := r.now()
	u.ID = r.s.nextID("users")
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = *u
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memUsers) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	all := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, &u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

// cards

type memCards struct{ *memRepositories }

func (r *memCards) Create(ctx context.Context, c *models.Card) error {
	if c.TemplateType == "" {
		c.TemplateType = models.DefaultTemplateType
	}
	now := r.now()
	c.ID = r.s.nextID("cards")
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.cards[c.ID] = *c
	return nil
}

func (r *memCards) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	c, ok := r.s.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memCards) Update(ctx context.Context, c *models.Card) error {
	stored, ok := r.s.cards[c.ID]
	if !ok || !models.IsVisible(&stored) {
		return ErrNotFound
	}
	stored.Title = c.Title
	stored.ContentMD = c.ContentMD
	stored.TemplateType = c.TemplateType
	stored.UpdatedAt = r.now()
	r.s.cards[c.ID] = stored
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memCards) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	c, ok := r.s.cards[id]
	if !ok || !models.IsVisible(&c) {
		return ErrNotFound
	}
	c.DeletedAt = &at
	c.UpdatedAt = at
	r.s.cards[id] = c
	return nil
}

func (r *memCards) List(ctx context.Context, f models.CardFilter) ([]*models.Card, error) {
	var tagID int64
	if f.Tag != "" {
		t, ok := r.tagByName(f.Tag)
		if !ok {
			return []*models.Card{}, nil
		}
		tagID = t.ID
	}

	var out []*models.Card
	for _, c := range r.s.cards {
		if !models.IsVisible(&c) || c.OwnerID != f.OwnerID {
			continue
		}
		if f.TemplateType != "" && c.TemplateType != f.TemplateType {
			continue
		}
		if f.Tag != "" {
			if _, ok := r.s.cardTags[cardTagKey{c.ID, tagID}]; !ok {
				continue
			}
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

// versions

type memVersions struct{ *memRepositories }

func (r *memVersions) Append(ctx context.Context, cardID int64, content string) (*models.CardVersion, error) {
	history := r.s.versions[cardID]
	v := models.CardVersion{
		ID:            r.s.nextID("card_versions"),
		CardID:        cardID,
		VersionNumber: len(history) + 1,
		ContentMD:     content,
		CreatedAt:     r.now(),
	}
	r.s.versions[cardID] = append(history, v)
	return &v, nil
}

func (r *memVersions) ListByCard(ctx context.Context, cardID int64) ([]*models.CardVersion, error) {
	history := r.s.versions[cardID]
	out := make([]*models.CardVersion, len(history))
	for i := range history {
		v := history[i]
		out[i] = &v
	}
	return out, nil
}

// documents

type memDocuments struct{ *memRepositories }

func (r *memDocuments) Create(ctx context.Context, d *models.Document) error {
	if d.GridRows == 0 {
		d.GridRows = models.DefaultGridRows
	}
	if d.GridCols == 0 {
		d.GridCols = models.DefaultGridCols
	}
	now := r.now()
	d.ID = r.s.nextID("documents")
	d.CreatedAt, d.UpdatedAt = now, now
	r.s.documents[d.ID] = *d
	return nil
}

func (r *memDocuments) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	d, ok := r.s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (r *memDocuments) Update(ctx context.Context, d *models.Document) error {
	stored, ok := r.s.documents[d.ID]
	if !ok || !models.IsVisible(&stored) {
		return ErrNotFound
	}
	stored.Title = d.Title
	stored.GridRows = d.GridRows
	stored.GridCols = d.GridCols
	stored.UpdatedAt = r.now()
	r.s.documents[d.ID] = stored
	d.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memDocuments) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	d, ok := r.s.documents[id]
	if !ok || !models.IsVisible(&d) {
		return ErrNotFound
	}
	d.DeletedAt = &at
	d.UpdatedAt = at
	r.s.documents[id] = d
	return nil
}

func (r *memDocuments) List(ctx context.Context, f models.DocumentFilter) ([]*models.Document, error) {
	var tagID int64
	if f.Tag != "" {
		t, ok := r.tagByName(f.Tag)
		if !ok {
			return []*models.Document{}, nil
		}
		tagID = t.ID
	}

	var out []*models.Document
	for _, d := range r.s.documents {
		if !models.IsVisible(&d) || d.OwnerID != f.OwnerID {
			continue
		}
		if f.Tag != "" && !r.documentHasTag(d.ID, tagID) {
			continue
		}
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *memRepositories) documentHasTag(documentID, tagID int64) bool {
	for _, p := range r.s.placements {
		if p.DocumentID != documentID {
			continue
		}
		if _, ok := r.s.cardTags[cardTagKey{p.CardID, tagID}]; ok {
			return true
		}
	}
	return false
}

// document cards

type memDocumentCards struct{ *memRepositories }

func (r *memDocumentCards) Create(ctx context.Context, dc *models.DocumentCard) error {
	if dc.Row < 0 || dc.Col < 0 {
		return ErrInvalidPlacement
	}
	if exists, _ := r.Exists(ctx, dc.DocumentID, dc.CardID); exists {
		return ErrAlreadyExists
	}
	if dc.SpanRows == 0 {
		dc.SpanRows = 1
	}
	if dc.SpanCols == 0 {
		dc.SpanCols = 1
	}
	now := r.now()
	dc.ID = r.s.nextID("document_cards")
	dc.CreatedAt, dc.UpdatedAt = now, now
	r.s.placements[dc.ID] = *dc
	return nil
}

func (r *memDocumentCards) Exists(ctx context.Context, documentID, cardID int64) (bool, error) {
	for _, p := range r.s.placements {
		if p.DocumentID == documentID && p.CardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memDocumentCards) ListByDocument(ctx context.Context, documentID int64) ([]*models.DocumentCard, error) {
	out := []*models.DocumentCard{}
	for _, p := range r.s.placements {
		if p.DocumentID == documentID {
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// tags

type memTags struct{ *memRepositories }

func (r *memRepositories) tagByName(name string) (models.Tag, bool) {
	for _, t := range r.s.tags {
		if t.Name == name {
			return t, true
		}
	}
	return models.Tag{}, false
}

func (r *memTags) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	t, ok := r.tagByName(name)
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *memTags) Create(ctx context.Context, name string, isAI bool) (*models.Tag, error) {
	if t, ok := r.tagByName(name); ok {
		return &t, nil
	}
	t := models.Tag{
		ID:            r.s.nextID("tags"),
		Name:          name,
		IsAIGenerated: isAI,
		CreatedAt:     r.now(),
	}
	r.s.tags[t.ID] = t
	return &t, nil
}

func (r *memTags) List(ctx context.Context, limit, offset int) ([]*models.Tag, error) {
	all := make([]*models.Tag, 0, len(r.s.tags))
	for _, t := range r.s.tags {
		all = append(all, &t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

func (r *memTags) ListByCard(ctx context.Context, cardID int64) ([]*models.Tag, error) {
	out := []*models.Tag{}
	for k := range r.s.cardTags {
		if k.cardID != cardID {
			continue
		}
		if t, ok := r.s.tags[k.tagID]; ok {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTags) Assign(ctx context.Context, cardID, tagID int64) error {
	r.s.cardTags[cardTagKey{cardID, tagID}] = struct{}{}
	return nil
}

// otps

type memOTPs struct{ *memRepositories }

func (r *memOTPs) Create(ctx context.Context, o *models.OTP) error {
	o.ID = r.s.nextID("otps")
	o.Consumed = false
	o.CreatedAt = r.now()
	r.s.otps[o.ID] = *o
	return nil
}

func (r *memOTPs) Consume(ctx context.Context, userID int64, code string, now time.Time) (bool, error) {
	var match *models.OTP
	for _, o := range r.s.otps {
		if o.UserID != userID || o.Code != code || !o.Valid(now) {
			continue
		}
		if match == nil || o.ID < match.ID {
			match = &o
		}
	}
	if match == nil {
		return false, nil
	}
	match.Consumed = true
	r.s.otps[match.ID] = *match
	return true, nil
}

func (r *memOTPs) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, o := range r.s.otps {
		if !o.ExpiresAt.After(now) {
			delete(r.s.otps, id)
			n++
		}
	}
	return n, nil
}
