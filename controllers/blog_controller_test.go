package controllers

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"riverside/models"
)

func TestCreatePostOperatorOnly(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Operator", "op@example.com", "secret1")
	member := env.register(t, "Member", "member@example.com", "secret1")

	form := url.Values{"title": {"Hello"}, "body": {"World"}}
	w := env.postForm("/create-blog-post", form, member)
	if w.Code != http.StatusForbidden {
		t.Fatalf("member create code %d", w.Code)
	}
	var count int64
	env.db.Model(&models.BlogPost{}).Count(&count)
	if count != 0 {
		t.Fatalf("post created by member")
	}
}

func TestCreateAndGetPost(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")

	form := url.Values{"title": {"First Post"}, "body": {"Some body text"}}
	w := env.postForm("/create-blog-post", form, op)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create code %d body %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/get-blog-post/1" {
		t.Fatalf("redirect to %q", loc)
	}

	w = env.get("/get-blog-post/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %d", w.Code)
	}

	if env.backup.syncs == 0 {
		t.Fatalf("backup not triggered by create")
	}
}

func TestCreatePostDuplicateTitle(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")

	form := url.Values{"title": {"Same Title"}, "body": {"one"}}
	if w := env.postForm("/create-blog-post", form, op); w.Code != http.StatusSeeOther {
		t.Fatalf("first create code %d", w.Code)
	}
	form.Set("body", "two")
	w := env.postForm("/create-blog-post", form, op)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create code %d", w.Code)
	}
	var count int64
	env.db.Model(&models.BlogPost{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 post, got %d", count)
	}
}

func TestGetPostUnknownID(t *testing.T) {
	env := newTestEnv(t)
	w := env.get("/get-blog-post/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code %d", w.Code)
	}
}

func TestAnonymousCommentRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")
	env.postForm("/create-blog-post", url.Values{"title": {"P"}, "body": {"b"}}, op)

	w := env.postForm("/post-blog-comment/1", url.Values{"text": {"hi"}}, nil)
	if w.Code != http.StatusFound {
		t.Fatalf("code %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect to %q", loc)
	}
	var count int64
	env.db.Model(&models.BlogComment{}).Count(&count)
	if count != 0 {
		t.Fatalf("comment created without a session")
	}
}

func TestCommentCreateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")
	member := env.register(t, "Member", "member@example.com", "secret1")
	env.postForm("/create-blog-post", url.Values{"title": {"P"}, "body": {"b"}}, op)

	w := env.postForm("/post-blog-comment/1", url.Values{"text": {"nice post"}}, member)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("comment code %d body %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "/get-blog-post/1" {
		t.Fatalf("comment redirect %q", loc)
	}

	// author deletes their own comment and lands back on the post
	w = env.get("/delete-blog-comment/1", member)
	if w.Code != http.StatusFound {
		t.Fatalf("delete code %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/get-blog-post/1" {
		t.Fatalf("delete redirect %q", loc)
	}
	var count int64
	env.db.Model(&models.BlogComment{}).Count(&count)
	if count != 0 {
		t.Fatalf("comment still present")
	}
}

func TestCommentDeleteOnlyAuthorOrOperator(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")
	author := env.register(t, "Author", "author@example.com", "secret1")
	other := env.register(t, "Other", "other@example.com", "secret1")
	env.postForm("/create-blog-post", url.Values{"title": {"P"}, "body": {"b"}}, op)
	env.postForm("/post-blog-comment/1", url.Values{"text": {"mine"}}, author)

	w := env.get("/delete-blog-comment/1", other)
	if w.Code != http.StatusForbidden {
		t.Fatalf("stranger delete code %d", w.Code)
	}
	var count int64
	env.db.Model(&models.BlogComment{}).Count(&count)
	if count != 1 {
		t.Fatalf("comment removed by stranger")
	}

	// the operator may remove anyone's comment
	w = env.get("/delete-blog-comment/1", op)
	if w.Code != http.StatusFound {
		t.Fatalf("operator delete code %d", w.Code)
	}
}

func TestDeletePostRemovesImageAndComments(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")

	body, ct := pngUpload(t, map[string]string{"title": "With Image", "body": "b"}, "image", "photo.png", 50, 50)
	w := env.postMultipart("/create-blog-post", body, ct, op)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create code %d body %s", w.Code, w.Body.String())
	}

	var post models.BlogPost
	if err := env.db.First(&post, 1).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.ImageFile == "" {
		t.Fatalf("image file not recorded")
	}
	stored := filepath.Join(env.images.Dir(), post.ImageFile)
	if _, err := os.Stat(stored); err != nil {
		t.Fatalf("stored image missing: %v", err)
	}

	env.postForm("/post-blog-comment/1", url.Values{"text": {"c"}}, op)

	w = env.get("/delete-blog-post/1", op)
	if w.Code != http.StatusFound {
		t.Fatalf("delete code %d", w.Code)
	}
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Fatalf("image file survived post deletion")
	}
	var comments int64
	env.db.Model(&models.BlogComment{}).Count(&comments)
	if comments != 0 {
		t.Fatalf("comments survived post deletion")
	}
}

func TestCreatePostRejectsBrokenImage(t *testing.T) {
	env := newTestEnv(t)
	op := env.register(t, "Operator", "op@example.com", "secret1")

	body, ct := textUpload(t, map[string]string{"title": "Broken", "body": "b"}, "image", "notes.txt", "this is not an image")
	w := env.postMultipart("/create-blog-post", body, ct, op)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("broken image code %d body %s", w.Code, w.Body.String())
	}
	var count int64
	env.db.Model(&models.BlogPost{}).Count(&count)
	if count != 0 {
		t.Fatalf("post created despite broken image")
	}
	names, err := env.images.List()
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("rejected upload left files behind: %v", names)
	}
}
