package service

import (
	"context"
	"sync"

	"blogapi/internal/domain"
	"blogapi/internal/query"
	"blogapi/internal/repository"
)

// mockUserRepository is a map-backed UserRepository
type mockUserRepository struct {
	users        map[string]*domain.User
	emailIndex   map[string]*domain.User
	createError  error
	lastCriteria query.UserCriteria
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]*domain.User),
	}
}

func (r *mockUserRepository) add(user *domain.User) {
	r.users[user.ID] = user
	r.emailIndex[user.Email] = user
}

func (r *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if r.createError != nil {
		return r.createError
	}
	r.add(user)
	return nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.emailIndex[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *mockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	r.add(user)
	return nil
}

func (r *mockUserRepository) Delete(ctx context.Context, id string) error {
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.emailIndex, user.Email)
	delete(r.users, id)
	return nil
}

func (r *mockUserRepository) List(ctx context.Context, criteria query.UserCriteria, page query.PageRequest) ([]*domain.User, int64, error) {
	r.lastCriteria = criteria
	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	return users, int64(len(users)), nil
}

func (r *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, exists := r.emailIndex[email]
	return exists, nil
}

// mockSessionRepository is a map-backed SessionRepository, safe for
// concurrent use
type mockSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{sessions: make(map[string]*domain.Session)}
}

func (r *mockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *mockSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return session, nil
}

func (r *mockSessionRepository) FindByTokenOrRefreshToken(ctx context.Context, value string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.Token == value || session.RefreshToken == value {
			return session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockSessionRepository) FindByUserIDAndRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.UserID == userID && session.RefreshToken == refreshToken {
			return session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockSessionRepository) Delete(ctx context.Context, session *domain.Session) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return false, nil
	}
	delete(r.sessions, session.ID)
	return true, nil
}

func (r *mockSessionRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, id)
		}
	}
	return nil
}

// mockAccountTokenRepository is a map-backed AccountTokenRepository
type mockAccountTokenRepository struct {
	tokens map[string]*domain.AccountToken
}

func newMockAccountTokenRepository() *mockAccountTokenRepository {
	return &mockAccountTokenRepository{tokens: make(map[string]*domain.AccountToken)}
}

func (r *mockAccountTokenRepository) Create(ctx context.Context, token *domain.AccountToken) error {
	for id, existing := range r.tokens {
		if existing.UserID == token.UserID && existing.Kind == token.Kind {
			delete(r.tokens, id)
		}
	}
	r.tokens[token.ID] = token
	return nil
}

func (r *mockAccountTokenRepository) GetByToken(ctx context.Context, kind domain.AccountTokenKind, value string) (*domain.AccountToken, error) {
	for _, token := range r.tokens {
		if token.Kind == kind && token.Token == value {
			return token, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockAccountTokenRepository) DeleteByUserID(ctx context.Context, userID string, kind domain.AccountTokenKind) error {
	for id, token := range r.tokens {
		if token.UserID == userID && token.Kind == kind {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *mockAccountTokenRepository) byUser(userID string, kind domain.AccountTokenKind) *domain.AccountToken {
	for _, token := range r.tokens {
		if token.UserID == userID && token.Kind == kind {
			return token
		}
	}
	return nil
}

// mockCategoryRepository is a map-backed CategoryRepository
type mockCategoryRepository struct {
	categories   map[string]*domain.Category
	postCounts   map[string]int
	lastCriteria query.CategoryCriteria
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{
		categories: make(map[string]*domain.Category),
		postCounts: make(map[string]int),
	}
}

func (r *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	r.categories[category.ID] = category
	return nil
}

func (r *mockCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return category, nil
}

func (r *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	for _, category := range r.categories {
		if category.Slug == slug {
			return category, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrNotFound
	}
	r.categories[category.ID] = category
	return nil
}

func (r *mockCategoryRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *mockCategoryRepository) List(ctx context.Context, criteria query.CategoryCriteria, page query.PageRequest) ([]*domain.Category, int64, error) {
	r.lastCriteria = criteria
	categories := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		categories = append(categories, category)
	}
	return categories, int64(len(categories)), nil
}

func (r *mockCategoryRepository) HasPosts(ctx context.Context, id string) (bool, error) {
	return r.postCounts[id] > 0, nil
}

// mockTagRepository is a map-backed TagRepository
type mockTagRepository struct {
	tags         map[string]*domain.Tag
	lastCriteria query.TagCriteria
}

func newMockTagRepository() *mockTagRepository {
	return &mockTagRepository{tags: make(map[string]*domain.Tag)}
}

func (r *mockTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	r.tags[tag.ID] = tag
	return nil
}

func (r *mockTagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	tag, ok := r.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tag, nil
}

func (r *mockTagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	for _, tag := range r.tags {
		if tag.Slug == slug {
			return tag, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	if _, ok := r.tags[tag.ID]; !ok {
		return repository.ErrNotFound
	}
	r.tags[tag.ID] = tag
	return nil
}

func (r *mockTagRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.tags[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.tags, id)
	return nil
}

func (r *mockTagRepository) List(ctx context.Context, criteria query.TagCriteria, page query.PageRequest) ([]*domain.Tag, int64, error) {
	r.lastCriteria = criteria
	tags := make([]*domain.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		tags = append(tags, tag)
	}
	return tags, int64(len(tags)), nil
}

// mockPostRepository is a map-backed PostRepository. List honors the
// published and author filters so visibility rules can be asserted.
type mockPostRepository struct {
	posts map[string]*domain.Post
}

func newMockPostRepository() *mockPostRepository {
	return &mockPostRepository{posts: make(map[string]*domain.Post)}
}

func (r *mockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.posts[post.ID] = post
	return nil
}

func (r *mockPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return post, nil
}

func (r *mockPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	for _, post := range r.posts {
		if post.Slug == slug {
			return post, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *mockPostRepository) Update(ctx context.Context, post *domain.Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return repository.ErrNotFound
	}
	r.posts[post.ID] = post
	return nil
}

func (r *mockPostRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *mockPostRepository) List(ctx context.Context, criteria query.PostCriteria, page query.PageRequest) ([]*domain.Post, int64, error) {
	posts := make([]*domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if criteria.IsPublished != nil && post.IsPublished() != *criteria.IsPublished {
			continue
		}
		if len(criteria.UserIDs) > 0 && !containsString(criteria.UserIDs, post.UserID) {
			continue
		}
		posts = append(posts, post)
	}
	return posts, int64(len(posts)), nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// mockCommentRepository is a map-backed CommentRepository
type mockCommentRepository struct {
	comments map[string]*domain.Comment
}

func newMockCommentRepository() *mockCommentRepository {
	return &mockCommentRepository{comments: make(map[string]*domain.Comment)}
}

func (r *mockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	r.comments[comment.ID] = comment
	return nil
}

func (r *mockCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	comment, ok := r.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return comment, nil
}

func (r *mockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	if _, ok := r.comments[comment.ID]; !ok {
		return repository.ErrNotFound
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *mockCommentRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *mockCommentRepository) ListByPostID(ctx context.Context, postID string, page query.PageRequest) ([]*domain.Comment, int64, error) {
	comments := make([]*domain.Comment, 0)
	for _, comment := range r.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	return comments, int64(len(comments)), nil
}

// mockMailer records sent mail
type mockMailer struct {
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}
