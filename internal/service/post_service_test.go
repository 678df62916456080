package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
)

func newTestPostService(t *testing.T) (PostService, *mockPostRepository, *mockCategoryRepository, *mockTagRepository) {
	t.Helper()

	postRepo := newMockPostRepository()
	categoryRepo := newMockCategoryRepository()
	tagRepo := newMockTagRepository()
	return NewPostService(postRepo, categoryRepo, tagRepo), postRepo, categoryRepo, tagRepo
}

func seedPost(repo *mockPostRepository, id, userID string, published bool) *domain.Post {
	post := &domain.Post{
		ID:      id,
		UserID:  userID,
		Title:   "Title " + id,
		Slug:    "slug-" + id,
		Content: "content",
	}
	if published {
		now := time.Now().Add(-time.Hour)
		post.PublishedAt = &now
	}
	repo.posts[id] = post
	return post
}

var (
	postAuthor = domain.Principal{UserID: "author-1", Email: "author@example.com", Roles: []string{"user"}}
	postAdmin  = domain.Principal{UserID: "admin-1", Email: "admin@example.com", Roles: []string{"admin"}}
	postReader = domain.Principal{UserID: "reader-1", Email: "reader@example.com", Roles: []string{"user"}}
)

func TestPostService_Create(t *testing.T) {
	t.Run("draft by default", func(t *testing.T) {
		svc, _, _, _ := newTestPostService(t)

		post, err := svc.Create(context.Background(), postAuthor, &dto.CreatePostRequest{
			Title:   "Hello",
			Slug:    "hello",
			Content: "world",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if post.UserID != postAuthor.UserID {
			t.Errorf("Expected author %q, got %q", postAuthor.UserID, post.UserID)
		}
		if post.PublishedAt != nil {
			t.Error("Expected draft, got published post")
		}
	})

	t.Run("publish flag sets published_at", func(t *testing.T) {
		svc, _, _, _ := newTestPostService(t)

		post, err := svc.Create(context.Background(), postAuthor, &dto.CreatePostRequest{
			Title:   "Hello",
			Slug:    "hello",
			Content: "world",
			Publish: true,
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if post.PublishedAt == nil {
			t.Fatal("Expected published_at to be set")
		}
		if !post.IsPublished() {
			t.Error("Expected post to be published")
		}
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		svc, postRepo, _, _ := newTestPostService(t)
		seedPost(postRepo, "p1", postAuthor.UserID, true)

		_, err := svc.Create(context.Background(), postAuthor, &dto.CreatePostRequest{
			Title:   "Other",
			Slug:    "slug-p1",
			Content: "dup",
		})
		if !errors.Is(err, ErrSlugTaken) {
			t.Errorf("Expected ErrSlugTaken, got %v", err)
		}
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		svc, _, _, _ := newTestPostService(t)

		_, err := svc.Create(context.Background(), postAuthor, &dto.CreatePostRequest{
			Title:       "Hello",
			Slug:        "hello",
			Content:     "world",
			CategoryIDs: []string{"missing"},
		})
		if !errors.Is(err, ErrBadRequest) {
			t.Errorf("Expected ErrBadRequest, got %v", err)
		}
	})

	t.Run("known links accepted", func(t *testing.T) {
		svc, _, categoryRepo, tagRepo := newTestPostService(t)
		categoryRepo.categories["c1"] = &domain.Category{ID: "c1", Title: "Go", Slug: "go"}
		tagRepo.tags["t1"] = &domain.Tag{ID: "t1", Title: "News", Slug: "news"}

		post, err := svc.Create(context.Background(), postAuthor, &dto.CreatePostRequest{
			Title:       "Hello",
			Slug:        "hello",
			Content:     "world",
			CategoryIDs: []string{"c1"},
			TagIDs:      []string{"t1"},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if len(post.CategoryIDs) != 1 || len(post.TagIDs) != 1 {
			t.Errorf("Expected links to be kept, got %v / %v", post.CategoryIDs, post.TagIDs)
		}
	})
}

func TestPostService_GetByID(t *testing.T) {
	svc, postRepo, _, _ := newTestPostService(t)
	seedPost(postRepo, "published", postAuthor.UserID, true)
	seedPost(postRepo, "draft", postAuthor.UserID, false)

	t.Run("published visible to everyone", func(t *testing.T) {
		if _, err := svc.GetByID(context.Background(), nil, "published"); err != nil {
			t.Errorf("GetByID() error = %v", err)
		}
	})

	t.Run("draft hidden from anonymous", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), nil, "draft")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("draft hidden from other users", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), &postReader, "draft")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("draft visible to postAuthor", func(t *testing.T) {
		if _, err := svc.GetByID(context.Background(), &postAuthor, "draft"); err != nil {
			t.Errorf("GetByID() error = %v", err)
		}
	})

	t.Run("draft visible to postAdmin", func(t *testing.T) {
		if _, err := svc.GetByID(context.Background(), &postAdmin, "draft"); err != nil {
			t.Errorf("GetByID() error = %v", err)
		}
	})
}

func TestPostService_Update(t *testing.T) {
	t.Run("postAuthor can publish and unpublish", func(t *testing.T) {
		svc, postRepo, _, _ := newTestPostService(t)
		seedPost(postRepo, "p1", postAuthor.UserID, false)

		publish := true
		post, err := svc.Update(context.Background(), postAuthor, "p1", &dto.UpdatePostRequest{Publish: &publish})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if post.PublishedAt == nil {
			t.Fatal("Expected published_at to be set")
		}

		unpublish := false
		post, err = svc.Update(context.Background(), postAuthor, "p1", &dto.UpdatePostRequest{Publish: &unpublish})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if post.PublishedAt != nil {
			t.Error("Expected published_at to be cleared")
		}
	})

	t.Run("non-postAuthor rejected", func(t *testing.T) {
		svc, postRepo, _, _ := newTestPostService(t)
		seedPost(postRepo, "p1", postAuthor.UserID, true)

		title := "hijack"
		_, err := svc.Update(context.Background(), postReader, "p1", &dto.UpdatePostRequest{Title: &title})
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("postAdmin can edit any post", func(t *testing.T) {
		svc, postRepo, _, _ := newTestPostService(t)
		seedPost(postRepo, "p1", postAuthor.UserID, true)

		title := "moderated"
		post, err := svc.Update(context.Background(), postAdmin, "p1", &dto.UpdatePostRequest{Title: &title})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if post.Title != "moderated" {
			t.Errorf("Expected updated title, got %q", post.Title)
		}
		if post.UpdatedUserID == nil || *post.UpdatedUserID != postAdmin.UserID {
			t.Error("Expected updated_user_id to record the editor")
		}
	})
}

func TestPostService_Delete(t *testing.T) {
	svc, postRepo, _, _ := newTestPostService(t)
	seedPost(postRepo, "p1", postAuthor.UserID, true)

	if err := svc.Delete(context.Background(), postReader, "p1"); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied, got %v", err)
	}
	if err := svc.Delete(context.Background(), postAuthor, "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), postAuthor, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPostService_List(t *testing.T) {
	newSeededService := func(t *testing.T) PostService {
		t.Helper()
		svc, postRepo, _, _ := newTestPostService(t)
		seedPost(postRepo, "pub1", postAuthor.UserID, true)
		seedPost(postRepo, "pub2", postReader.UserID, true)
		seedPost(postRepo, "draft1", postAuthor.UserID, false)
		return svc
	}

	t.Run("anonymous sees published only", func(t *testing.T) {
		svc := newSeededService(t)

		posts, total, _, err := svc.List(context.Background(), nil, &dto.ListPostsRequest{Page: 1, Size: 20})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 2 {
			t.Errorf("Expected 2 posts, got %d", total)
		}
		for _, post := range posts {
			if !post.IsPublished() {
				t.Errorf("Unpublished post %s leaked into listing", post.ID)
			}
		}
	})

	t.Run("postAuthor listing own posts includes drafts", func(t *testing.T) {
		svc := newSeededService(t)

		_, total, _, err := svc.List(context.Background(), &postAuthor, &dto.ListPostsRequest{
			Page:    1,
			Size:    20,
			UserIDs: []string{postAuthor.UserID},
		})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 2 {
			t.Errorf("Expected 2 posts (published + draft), got %d", total)
		}
	})

	t.Run("user listing someone else stays published-only", func(t *testing.T) {
		svc := newSeededService(t)

		_, total, _, err := svc.List(context.Background(), &postReader, &dto.ListPostsRequest{
			Page:    1,
			Size:    20,
			UserIDs: []string{postAuthor.UserID},
		})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 1 {
			t.Errorf("Expected 1 published post, got %d", total)
		}
	})

	t.Run("postAdmin sees everything", func(t *testing.T) {
		svc := newSeededService(t)

		_, total, _, err := svc.List(context.Background(), &postAdmin, &dto.ListPostsRequest{Page: 1, Size: 20})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if total != 3 {
			t.Errorf("Expected 3 posts, got %d", total)
		}
	})

	t.Run("bad page rejected", func(t *testing.T) {
		svc := newSeededService(t)

		_, _, _, err := svc.List(context.Background(), nil, &dto.ListPostsRequest{Page: 0, Size: 20})
		if !errors.Is(err, ErrBadRequest) {
			t.Errorf("Expected ErrBadRequest, got %v", err)
		}
	})
}
