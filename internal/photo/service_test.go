package photo

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstash/service/internal/hashtag"
)

// fakeRepo is an in-memory Repository. It applies the same tag
// normalization as the Postgres implementation so workflow tests observe the
// catalog's collapse of duplicates.
type fakeRepo struct {
	photos      []Photo
	tagIDs      map[string]int64
	nextID      int64
	nextTagID   int64
	createErr   error
	createCalls int
}

func (f *fakeRepo) Create(_ context.Context, ownerID int64, publicURL, storageKey string, tagNames []string) (*Photo, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.tagIDs == nil {
		f.tagIDs = map[string]int64{}
	}
	f.nextID++
	p := Photo{
		ID:         f.nextID,
		OwnerID:    ownerID,
		PublicURL:  publicURL,
		StorageKey: storageKey,
		CreatedAt:  time.Now(),
		Hashtags:   []hashtag.Hashtag{},
	}
	for _, name := range normalizeTags(tagNames) {
		id, ok := f.tagIDs[name]
		if !ok {
			f.nextTagID++
			id = f.nextTagID
			f.tagIDs[name] = id
		}
		p.Hashtags = append(p.Hashtags, hashtag.Hashtag{ID: id, Name: name})
	}
	f.photos = append(f.photos, p)
	return &p, nil
}

func (f *fakeRepo) ListByOwner(_ context.Context, ownerID int64, tagFilter string) ([]Photo, error) {
	out := []Photo{}
	for _, p := range f.photos {
		if p.OwnerID != ownerID {
			continue
		}
		if tagFilter != "" && !hasTag(p, tagFilter) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) GetByOwner(_ context.Context, ownerID, photoID int64) (*Photo, error) {
	for i := range f.photos {
		if f.photos[i].ID == photoID && f.photos[i].OwnerID == ownerID {
			return &f.photos[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) DeleteByOwner(_ context.Context, ownerID, photoID int64) error {
	for i := range f.photos {
		if f.photos[i].ID == photoID && f.photos[i].OwnerID == ownerID {
			f.photos = append(f.photos[:i], f.photos[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func hasTag(p Photo, name string) bool {
	for _, h := range p.Hashtags {
		if h.Name == name {
			return true
		}
	}
	return false
}

// fakeStorage records uploads and derives URLs from a fixed public base.
type fakeStorage struct {
	uploadErr error
	uploads   []string
}

func (f *fakeStorage) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeStorage) PublicURL(key string) string { return "https://cdn.test/" + key }

func newTestService() (*Service, *fakeRepo, *fakeStorage) {
	repo := &fakeRepo{}
	store := &fakeStorage{}
	return NewService(repo, store), repo, store
}

func blob() io.Reader { return strings.NewReader("not really a jpeg") }

func TestUpload_KeyURLAndTags(t *testing.T) {
	svc, _, store := newTestService()

	p, err := svc.Upload(context.Background(), 1, blob(), 17, "image/jpeg", "trip.JPG", "beach,sunset")
	require.NoError(t, err)

	// Extension case is preserved and the token before it is globally unique.
	assert.True(t, strings.HasSuffix(p.StorageKey, ".JPG"))
	_, err = uuid.Parse(strings.TrimSuffix(p.StorageKey, ".JPG"))
	assert.NoError(t, err)

	assert.Equal(t, "https://cdn.test/"+p.StorageKey, p.PublicURL)
	assert.Equal(t, []string{p.StorageKey}, store.uploads)

	require.Len(t, p.Hashtags, 2)
	assert.Equal(t, "beach", p.Hashtags[0].Name)
	assert.Equal(t, "sunset", p.Hashtags[1].Name)
}

func TestUpload_StorageFailureWritesNoMetadata(t *testing.T) {
	svc, repo, store := newTestService()
	store.uploadErr = errors.New("bucket unreachable")

	_, err := svc.Upload(context.Background(), 1, blob(), 17, "image/jpeg", "trip.jpg", "beach")
	assert.True(t, svc.IsStorageFailure(err))
	assert.Zero(t, repo.createCalls)
	assert.Empty(t, repo.photos)
}

func TestUpload_DuplicateTagsCollapsed(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Upload(context.Background(), 1, blob(), 17, "image/jpeg", "trip.jpg", "sunset, sunset, Beach")
	require.NoError(t, err)

	require.Len(t, p.Hashtags, 2)
	assert.Equal(t, "sunset", p.Hashtags[0].Name)
	assert.Equal(t, "Beach", p.Hashtags[1].Name)
}

func TestUpload_FilenameWithoutDot(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Upload(context.Background(), 1, blob(), 17, "image/jpeg", "trip", "")
	require.NoError(t, err)

	// No extension, not an error: the key is the bare token.
	assert.NotContains(t, p.StorageKey, ".")
	_, err = uuid.Parse(p.StorageKey)
	assert.NoError(t, err)
	assert.Empty(t, p.Hashtags)
}

func TestUpload_ThenGetRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	uploaded, err := svc.Upload(ctx, 1, blob(), 17, "image/jpeg", "trip.jpg", " beach , sunset ,beach")
	require.NoError(t, err)

	got, err := svc.GetForOwner(ctx, 1, uploaded.ID)
	require.NoError(t, err)

	names := make([]string, len(got.Hashtags))
	for i, h := range got.Hashtags {
		names[i] = h.Name
	}
	assert.ElementsMatch(t, []string{"beach", "sunset"}, names)
	assert.NotEmpty(t, got.PublicURL)
}

func TestGetForOwner_HidesOtherOwners(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Upload(ctx, 2, blob(), 17, "image/jpeg", "trip.jpg", "")
	require.NoError(t, err)

	// Another owner's photo reads exactly like a missing one.
	_, err = svc.GetForOwner(ctx, 1, p.ID)
	assert.True(t, svc.IsNotFound(err))
}

func TestListForOwner_TagFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Upload(ctx, 1, blob(), 17, "image/jpeg", "a.jpg", "beach")
	require.NoError(t, err)
	_, err = svc.Upload(ctx, 1, blob(), 17, "image/jpeg", "b.jpg", "sunset")
	require.NoError(t, err)

	beach, err := svc.ListForOwner(ctx, 1, "beach")
	require.NoError(t, err)
	require.Len(t, beach, 1)
	assert.True(t, hasTag(beach[0], "beach"))

	all, err := svc.ListForOwner(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := svc.ListForOwner(ctx, 1, "nonexistent-tag")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteForOwner_IdempotentFailure(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Upload(ctx, 1, blob(), 17, "image/jpeg", "trip.jpg", "beach")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteForOwner(ctx, 1, p.ID))

	remaining, err := svc.ListForOwner(ctx, 1, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Second delete of the same id fails cleanly, it does not crash.
	err = svc.DeleteForOwner(ctx, 1, p.ID)
	assert.True(t, svc.IsNotFound(err))
}

func TestDeleteForOwner_HidesOtherOwners(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Upload(ctx, 2, blob(), 17, "image/jpeg", "trip.jpg", "")
	require.NoError(t, err)

	err = svc.DeleteForOwner(ctx, 1, p.ID)
	assert.True(t, svc.IsNotFound(err))
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single", "beach", []string{"beach"}},
		{"trims each piece", " beach , sunset ", []string{"beach", "sunset"}},
		{"drops empty pieces", "beach,,  ,sunset", []string{"beach", "sunset"}},
		{"duplicates pass through", "sunset,sunset", []string{"sunset", "sunset"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitTags(tt.in))
		})
	}
}
