package service

import (
	"context"
	"errors"
	"testing"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
)

func TestCategoryService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := newMockCategoryRepository()
		svc := NewCategoryService(repo)

		category, err := svc.Create(context.Background(), postAdmin, &dto.CreateCategoryRequest{
			Title:       "Go",
			Slug:        "go",
			Description: "All things Go",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if category.ID == "" {
			t.Error("Expected generated id")
		}
		if category.CreatedUserID == nil || *category.CreatedUserID != postAdmin.UserID {
			t.Error("Expected created_user_id to record the creator")
		}
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		repo := newMockCategoryRepository()
		repo.categories["c1"] = &domain.Category{ID: "c1", Title: "Go", Slug: "go"}
		svc := NewCategoryService(repo)

		_, err := svc.Create(context.Background(), postAdmin, &dto.CreateCategoryRequest{
			Title: "Golang",
			Slug:  "go",
		})
		if !errors.Is(err, ErrSlugTaken) {
			t.Errorf("Expected ErrSlugTaken, got %v", err)
		}
	})
}

func TestCategoryService_Update(t *testing.T) {
	repo := newMockCategoryRepository()
	repo.categories["c1"] = &domain.Category{ID: "c1", Title: "Go", Slug: "go"}
	repo.categories["c2"] = &domain.Category{ID: "c2", Title: "Rust", Slug: "rust"}
	svc := NewCategoryService(repo)

	t.Run("keeping own slug is not a conflict", func(t *testing.T) {
		slug := "go"
		title := "Go lang"
		category, err := svc.Update(context.Background(), postAdmin, "c1", &dto.UpdateCategoryRequest{Title: &title, Slug: &slug})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if category.Title != "Go lang" {
			t.Errorf("Expected updated title, got %q", category.Title)
		}
	})

	t.Run("taking another category's slug is", func(t *testing.T) {
		slug := "rust"
		_, err := svc.Update(context.Background(), postAdmin, "c1", &dto.UpdateCategoryRequest{Slug: &slug})
		if !errors.Is(err, ErrSlugTaken) {
			t.Errorf("Expected ErrSlugTaken, got %v", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		title := "x"
		_, err := svc.Update(context.Background(), postAdmin, "missing", &dto.UpdateCategoryRequest{Title: &title})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestCategoryService_Delete(t *testing.T) {
	repo := newMockCategoryRepository()
	repo.categories["c1"] = &domain.Category{ID: "c1", Title: "Go", Slug: "go"}
	repo.categories["c2"] = &domain.Category{ID: "c2", Title: "Rust", Slug: "rust"}
	repo.postCounts["c1"] = 3
	svc := NewCategoryService(repo)

	t.Run("in use", func(t *testing.T) {
		if err := svc.Delete(context.Background(), "c1"); !errors.Is(err, ErrCategoryInUse) {
			t.Errorf("Expected ErrCategoryInUse, got %v", err)
		}
	})

	t.Run("unused", func(t *testing.T) {
		if err := svc.Delete(context.Background(), "c2"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := svc.Delete(context.Background(), "c2"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestCategoryService_ListCriteria(t *testing.T) {
	repo := newMockCategoryRepository()
	svc := NewCategoryService(repo)

	start := "2026-02-01T00:00:00Z"
	end := "2026-03-01T00:00:00Z"
	_, _, _, err := svc.List(context.Background(), &dto.ListCategoriesRequest{
		Page:           1,
		Size:           20,
		CreatedUserIDs: []string{"creator-1", "creator-2"},
		UpdatedUserIDs: []string{"editor-1"},
		CreatedAtStart: &start,
		UpdatedAtEnd:   &end,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(repo.lastCriteria.CreatedUserIDs) != 2 || repo.lastCriteria.CreatedUserIDs[0] != "creator-1" {
		t.Errorf("Expected created-by filter to reach the repository, got %v", repo.lastCriteria.CreatedUserIDs)
	}
	if len(repo.lastCriteria.UpdatedUserIDs) != 1 || repo.lastCriteria.UpdatedUserIDs[0] != "editor-1" {
		t.Errorf("Expected updated-by filter to reach the repository, got %v", repo.lastCriteria.UpdatedUserIDs)
	}
	if repo.lastCriteria.CreatedAtStart == nil || repo.lastCriteria.UpdatedAtEnd == nil {
		t.Error("Expected date range bounds to reach the repository")
	}

	bad := "not-a-date"
	_, _, _, err = svc.List(context.Background(), &dto.ListCategoriesRequest{Page: 1, Size: 20, CreatedAtStart: &bad})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("Expected ErrBadRequest for malformed date, got %v", err)
	}
}

func TestTagService_ListCriteria(t *testing.T) {
	repo := newMockTagRepository()
	svc := NewTagService(repo)

	start := "2026-02-01T00:00:00Z"
	_, _, _, err := svc.List(context.Background(), &dto.ListTagsRequest{
		Page:           1,
		Size:           20,
		CreatedUserIDs: []string{"creator-1"},
		CreatedAtStart: &start,
		Q:              "news",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(repo.lastCriteria.CreatedUserIDs) != 1 || repo.lastCriteria.CreatedUserIDs[0] != "creator-1" {
		t.Errorf("Expected created-by filter to reach the repository, got %v", repo.lastCriteria.CreatedUserIDs)
	}
	if repo.lastCriteria.CreatedAtStart == nil {
		t.Error("Expected createdAtStart to reach the repository")
	}
	if repo.lastCriteria.Q != "news" {
		t.Errorf("Expected search term to reach the repository, got %q", repo.lastCriteria.Q)
	}
}

func TestTagService_SlugUniqueness(t *testing.T) {
	repo := newMockTagRepository()
	repo.tags["t1"] = &domain.Tag{ID: "t1", Title: "News", Slug: "news"}
	svc := NewTagService(repo)

	_, err := svc.Create(context.Background(), postAdmin, &dto.CreateTagRequest{Title: "Newsletter", Slug: "news"})
	if !errors.Is(err, ErrSlugTaken) {
		t.Errorf("Expected ErrSlugTaken, got %v", err)
	}

	tag, err := svc.Create(context.Background(), postAdmin, &dto.CreateTagRequest{Title: "Newsletter", Slug: "newsletter"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tag.Slug != "newsletter" {
		t.Errorf("Expected slug newsletter, got %q", tag.Slug)
	}
}

func TestCommentService_Create(t *testing.T) {
	commentRepo := newMockCommentRepository()
	postRepo := newMockPostRepository()
	seedPost(postRepo, "published", postAuthor.UserID, true)
	seedPost(postRepo, "draft", postAuthor.UserID, false)
	svc := NewCommentService(commentRepo, postRepo)

	t.Run("under published post", func(t *testing.T) {
		comment, err := svc.Create(context.Background(), postReader, "published", &dto.CreateCommentRequest{Content: "nice"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if comment.UserID != postReader.UserID {
			t.Errorf("Expected commenter %q, got %q", postReader.UserID, comment.UserID)
		}
	})

	t.Run("draft invisible to others", func(t *testing.T) {
		_, err := svc.Create(context.Background(), postReader, "draft", &dto.CreateCommentRequest{Content: "sneak"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("author may comment own draft", func(t *testing.T) {
		if _, err := svc.Create(context.Background(), postAuthor, "draft", &dto.CreateCommentRequest{Content: "note to self"}); err != nil {
			t.Errorf("Create() error = %v", err)
		}
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := svc.Create(context.Background(), postReader, "missing", &dto.CreateCommentRequest{Content: "hi"})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestCommentService_OwnerGate(t *testing.T) {
	commentRepo := newMockCommentRepository()
	postRepo := newMockPostRepository()
	seedPost(postRepo, "published", postAuthor.UserID, true)
	commentRepo.comments["cm1"] = &domain.Comment{ID: "cm1", PostID: "published", UserID: postReader.UserID, Content: "mine"}
	svc := NewCommentService(commentRepo, postRepo)

	t.Run("stranger cannot edit", func(t *testing.T) {
		_, err := svc.Update(context.Background(), postAuthor, "cm1", &dto.UpdateCommentRequest{Content: "edited"})
		if !errors.Is(err, ErrAccessDenied) {
			t.Errorf("Expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("owner edits", func(t *testing.T) {
		comment, err := svc.Update(context.Background(), postReader, "cm1", &dto.UpdateCommentRequest{Content: "edited"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if comment.Content != "edited" {
			t.Errorf("Expected edited content, got %q", comment.Content)
		}
	})

	t.Run("admin deletes", func(t *testing.T) {
		if err := svc.Delete(context.Background(), postAdmin, "cm1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})
}
