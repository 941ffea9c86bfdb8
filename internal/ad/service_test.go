// AngelaMos | 2026
// service_test.go

package ad

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/carterperez-dev/templates/classifieds/internal/asset"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

type owner struct {
	FirstName, LastName, Email, Phone string
}

type memRepo struct {
	mu     sync.Mutex
	ads    map[int64]*Ad
	owners func(id int64) (owner, bool)
	seq    int64
	log    *[]string
}

func newMemRepo(owners func(int64) (owner, bool)) *memRepo {
	return &memRepo{ads: make(map[int64]*Ad), owners: owners}
}

func (m *memRepo) record(op string) {
	if m.log != nil {
		*m.log = append(*m.log, op)
	}
}

func (m *memRepo) NextID(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *memRepo) Create(_ context.Context, a *Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.owners(a.OwnerID); !ok {
		return errors.New("violates foreign key ads_owner_id_fkey")
	}
	cp := *a
	m.ads[a.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*Ad, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.ads[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o, _ := m.owners(a.OwnerID)
	return &Detail{
		Ad:             *a,
		OwnerFirstName: o.FirstName,
		OwnerLastName:  o.LastName,
		OwnerEmail:     o.Email,
		OwnerPhone:     o.Phone,
	}, nil
}

func (m *memRepo) filter(keep func(*Ad) bool) []Ad {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []Ad{}
	for id := int64(1); id <= m.seq; id++ {
		if a, ok := m.ads[id]; ok && keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (m *memRepo) List(context.Context) ([]Ad, error) {
	return m.filter(func(*Ad) bool { return true }), nil
}

func (m *memRepo) ListByOwner(_ context.Context, ownerID int64) ([]Ad, error) {
	return m.filter(func(a *Ad) bool { return a.OwnerID == ownerID }), nil
}

func (m *memRepo) SearchByTitle(_ context.Context, title string) ([]Ad, error) {
	needle := strings.ToLower(title)
	return m.filter(func(a *Ad) bool {
		return strings.Contains(strings.ToLower(a.Title), needle)
	}), nil
}

func (m *memRepo) Update(_ context.Context, a *Ad) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.ads[a.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Title = a.Title
	stored.Description = a.Description
	stored.Price = a.Price
	return nil
}

func (m *memRepo) UpdateImage(_ context.Context, id int64, ref asset.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.ads[id]
	if !ok {
		return core.ErrNotFound
	}
	stored.SetImage(ref)
	return nil
}

func (m *memRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ads[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.ads, id)
	m.record("ad")
	return nil
}

func (m *memRepo) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.ads)), nil
}

type recordingPurger struct {
	log   *[]string
	calls []int64
}

func (p *recordingPurger) DeleteByAd(_ context.Context, adID int64) (int64, error) {
	p.calls = append(p.calls, adID)
	*p.log = append(*p.log, "comments")
	return 0, nil
}

// flakyStore wraps a Store and fails the selected operations.
type flakyStore struct {
	asset.Store
	failPut    bool
	failDelete bool
	unsized    bool
	log        *[]string
}

func (f *flakyStore) Open(ctx context.Context, k asset.Key) (*asset.Object, error) {
	obj, err := f.Store.Open(ctx, k)
	if err != nil {
		return nil, err
	}
	if f.unsized {
		obj.Size = 0
	}
	return obj, nil
}

func (f *flakyStore) Put(ctx context.Context, k asset.Key, d []byte, ct string) (asset.Ref, error) {
	if f.failPut {
		return asset.Ref{}, errors.New("disk full")
	}
	return f.Store.Put(ctx, k, d, ct)
}

func (f *flakyStore) Delete(ctx context.Context, k asset.Key) error {
	if f.log != nil {
		*f.log = append(*f.log, "asset")
	}
	if f.failDelete {
		return errors.New("permission denied")
	}
	return f.Store.Delete(ctx, k)
}

var (
	pngBytes = append(
		[]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		make([]byte, 32)...,
	)
	gifBytes = append([]byte("GIF89a"), make([]byte, 32)...)

	seller   = policy.Principal{ID: 1, Role: policy.RoleUser}
	stranger = policy.Principal{ID: 2, Role: policy.RoleUser}
	admin    = policy.Principal{ID: 3, Role: policy.RoleAdmin}
)

func knownOwners(id int64) (owner, bool) {
	switch id {
	case 1:
		return owner{"Sam", "Seller", "sam@example.com", "+15550001"}, true
	case 2:
		return owner{"Stan", "Ger", "stan@example.com", "+15550002"}, true
	case 3:
		return owner{"Ada", "Min", "ada@example.com", "+15550003"}, true
	}
	return owner{}, false
}

type fixture struct {
	svc    *Service
	repo   *memRepo
	store  *flakyStore
	purger *recordingPurger
	log    *[]string
}

func newFixture() *fixture {
	log := &[]string{}
	repo := newMemRepo(knownOwners)
	repo.log = log
	store := &flakyStore{Store: asset.NewFSStore(afero.NewMemMapFs())}
	purger := &recordingPurger{log: log}

	return &fixture{
		svc:    NewService(repo, purger, store, 1<<20, slog.New(slog.DiscardHandler)),
		repo:   repo,
		store:  store,
		purger: purger,
		log:    log,
	}
}

func (f *fixture) create(t *testing.T, p policy.Principal, title string, price int64) *Ad {
	t.Helper()

	a, err := f.svc.Create(context.Background(), p, AdRequest{
		Title:       title,
		Description: "a perfectly fine thing",
		Price:       price,
	}, pngBytes, "image/png")
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	return a
}

func TestCreateStoresImageAndRow(t *testing.T) {
	f := newFixture()
	a := f.create(t, seller, "Bike", 100)

	if a.OwnerID != seller.ID {
		t.Errorf("owner = %d, want %d", a.OwnerID, seller.ID)
	}
	if a.ImagePath != asset.AdKey(a.ID).Path() || a.ImageMediaType != "image/png" ||
		a.ImageFileSize != int64(len(pngBytes)) {
		t.Errorf("image ref = %+v", a.Image())
	}

	obj, err := f.store.Open(context.Background(), asset.AdKey(a.ID))
	if err != nil {
		t.Fatalf("image not stored: %v", err)
	}
	_ = obj.Body.Close()
}

func TestCreateRejectsBadImageBeforeWriting(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), seller, AdRequest{Title: "Lamp"},
		[]byte("not an image"), "text/plain")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Create() error = %v, want ErrInvalidInput", err)
	}
	if n, _ := f.repo.Count(context.Background()); n != 0 {
		t.Errorf("ads stored = %d, want 0", n)
	}
}

func TestCreateFailsWhenImageCannotBeStored(t *testing.T) {
	f := newFixture()
	f.store.failPut = true

	_, err := f.svc.Create(context.Background(), seller, AdRequest{Title: "Lamp"}, pngBytes, "image/png")
	if err == nil {
		t.Fatal("Create() succeeded without storing the image")
	}
	if n, _ := f.repo.Count(context.Background()); n != 0 {
		t.Errorf("ads stored = %d, want 0", n)
	}
}

func TestCreateRemovesImageWhenInsertFails(t *testing.T) {
	f := newFixture()
	ghost := policy.Principal{ID: 77, Role: policy.RoleUser}

	_, err := f.svc.Create(context.Background(), ghost, AdRequest{Title: "Lamp"}, pngBytes, "image/png")
	if err == nil {
		t.Fatal("Create() for unknown owner should fail")
	}

	if _, err := f.store.Open(context.Background(), asset.AdKey(1)); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("orphan image left behind: %v", err)
	}
}

func TestMutationsAuthorization(t *testing.T) {
	ops := map[string]func(f *fixture, p policy.Principal, id int64) error{
		"update": func(f *fixture, p policy.Principal, id int64) error {
			_, err := f.svc.Update(context.Background(), p, id, AdRequest{
				Title: "Changed", Description: "changed text", Price: 1,
			})
			return err
		},
		"update image": func(f *fixture, p policy.Principal, id int64) error {
			_, err := f.svc.UpdateImage(context.Background(), p, id, gifBytes, "image/gif")
			return err
		},
		"delete": func(f *fixture, p policy.Principal, id int64) error {
			return f.svc.Delete(context.Background(), p, id)
		},
	}

	for name, op := range ops {
		t.Run(name+" by stranger", func(t *testing.T) {
			f := newFixture()
			a := f.create(t, seller, "Bike", 100)

			if err := op(f, stranger, a.ID); !errors.Is(err, core.ErrForbidden) {
				t.Fatalf("error = %v, want ErrForbidden", err)
			}

			stored, err := f.repo.GetByID(context.Background(), a.ID)
			if err != nil {
				t.Fatalf("ad gone after forbidden %s: %v", name, err)
			}
			if *stored != *a {
				t.Errorf("ad changed: %+v, was %+v", stored, a)
			}
			if len(f.purger.calls) != 0 {
				t.Error("comments purged by a forbidden delete")
			}

			obj, err := f.store.Open(context.Background(), asset.AdKey(a.ID))
			if err != nil {
				t.Fatalf("image gone after forbidden %s: %v", name, err)
			}
			body, _ := io.ReadAll(obj.Body)
			_ = obj.Body.Close()
			if !bytes.Equal(body, pngBytes) {
				t.Error("image changed by forbidden mutation")
			}
		})

		t.Run(name+" by owner", func(t *testing.T) {
			f := newFixture()
			a := f.create(t, seller, "Bike", 100)

			if err := op(f, seller, a.ID); err != nil {
				t.Fatalf("error = %v, want nil", err)
			}
		})

		t.Run(name+" by admin", func(t *testing.T) {
			f := newFixture()
			a := f.create(t, seller, "Bike", 100)

			if err := op(f, admin, a.ID); err != nil {
				t.Fatalf("error = %v, want nil", err)
			}
		})

		t.Run(name+" of missing ad", func(t *testing.T) {
			f := newFixture()

			if err := op(f, admin, 404); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestUpdateImageReplacesBlob(t *testing.T) {
	f := newFixture()
	a := f.create(t, seller, "Bike", 100)

	updated, err := f.svc.UpdateImage(context.Background(), seller, a.ID, gifBytes, "image/gif")
	if err != nil {
		t.Fatal(err)
	}
	if updated.ImageMediaType != "image/gif" {
		t.Errorf("media type = %q", updated.ImageMediaType)
	}

	obj, err := f.svc.DownloadImage(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Body.Close()

	body, _ := io.ReadAll(obj.Body)
	if !bytes.Equal(body, gifBytes) || obj.ContentType != "image/gif" {
		t.Error("download does not reflect the replaced image")
	}
}

func TestDownloadImageSize(t *testing.T) {
	tests := []struct {
		name    string
		unsized bool
		want    int64
	}{
		{"store size wins over stale row", false, int64(len(pngBytes))},
		{"row size when store reports none", true, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			a := f.create(t, seller, "Bike", 100)
			f.repo.ads[a.ID].ImageFileSize = 5
			f.store.unsized = tt.unsized

			obj, err := f.svc.DownloadImage(context.Background(), a.ID)
			if err != nil {
				t.Fatal(err)
			}
			defer obj.Body.Close()

			if obj.Size != tt.want {
				t.Errorf("size = %d, want %d", obj.Size, tt.want)
			}
			if obj.ContentType != "image/png" {
				t.Errorf("content type = %q", obj.ContentType)
			}
		})
	}
}

func TestUpdateImageToleratesMissingBlob(t *testing.T) {
	f := newFixture()
	a := f.create(t, seller, "Bike", 100)

	if err := f.store.Store.Delete(context.Background(), asset.AdKey(a.ID)); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.UpdateImage(context.Background(), seller, a.ID, gifBytes, "image/gif"); err != nil {
		t.Errorf("UpdateImage() with absent old blob error = %v", err)
	}
}

func TestDeleteCascadeOrder(t *testing.T) {
	f := newFixture()
	a := f.create(t, seller, "Bike", 100)
	f.store.log = f.log

	if err := f.svc.Delete(context.Background(), seller, a.ID); err != nil {
		t.Fatal(err)
	}

	want := []string{"comments", "ad", "asset"}
	if strings.Join(*f.log, ",") != strings.Join(want, ",") {
		t.Errorf("delete order = %v, want %v", *f.log, want)
	}

	if _, err := f.svc.Get(context.Background(), a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.DownloadImage(context.Background(), a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DownloadImage() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSucceedsWhenImageRemovalFails(t *testing.T) {
	f := newFixture()
	a := f.create(t, seller, "Bike", 100)
	f.store.failDelete = true

	if err := f.svc.Delete(context.Background(), seller, a.ID); err != nil {
		t.Fatalf("Delete() error = %v, want nil once the row is gone", err)
	}
	if _, err := f.repo.GetByID(context.Background(), a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Error("ad row still present")
	}
}

func TestListingAndSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.create(t, seller, "Red Bike", 100)
	f.create(t, stranger, "Blue bicycle", 80)
	f.create(t, seller, "Sofa", 300)

	all, err := f.svc.ListAll(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAll() = %d, %v", len(all), err)
	}

	mine, err := f.svc.ListMine(ctx, seller)
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListMine() = %d, %v", len(mine), err)
	}
	for _, a := range mine {
		if a.OwnerID != seller.ID {
			t.Errorf("ListMine() returned ad of %d", a.OwnerID)
		}
	}

	tests := []struct {
		query string
		want  int
	}{
		{"bike", 1},
		{"BI", 2},
		{"sofa", 1},
		{"car", 0},
		{"  ", 3},
	}
	for _, tt := range tests {
		got, err := f.svc.Search(ctx, tt.query)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != tt.want {
			t.Errorf("Search(%q) = %d results, want %d", tt.query, len(got), tt.want)
		}
	}

	resp := ToListResponse(all)
	if resp.Count != 3 || resp.Results[0].Image != ImageURL(resp.Results[0].ID) {
		t.Errorf("ToListResponse() = %+v", resp)
	}
}

func TestListMineRequiresPrincipal(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.ListMine(context.Background(), policy.Principal{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("ListMine() error = %v, want ErrUnauthorized", err)
	}
}
