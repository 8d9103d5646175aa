package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// uploadedFile runs content through a real multipart round trip so the
// header carries the same fields a request would.
func uploadedFile(filename, contentType string, content []byte) *multipart.FileHeader {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="foto"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	_, err = part.Write(content)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(w.Close()).To(gomega.Succeed())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	ginkgo.DeferCleanup(form.RemoveAll)
	return form.File["foto"][0]
}

func pngOfSize(n int) []byte {
	content := make([]byte, n)
	copy(content, pngHeader)
	return content
}

func photoFieldMessage(err error) string {
	appErr, ok := internal.IsAppError(err)
	gomega.Expect(ok).To(gomega.BeTrue(), "expected AppError, got %v", err)
	gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusBadRequest))
	details := appErr.Details.(internal.ValidationErrors)
	gomega.Expect(details.Errors[0].Field).To(gomega.Equal("foto"))
	return details.Errors[0].Message
}

func dirEntries(dir string) []string {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var _ = ginkgo.Describe("PhotoStore", func() {
	var (
		ctx    context.Context
		dir    string
		store  *PhotoStore
		logger *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		dir = filepath.Join(ginkgo.GinkgoT().TempDir(), "photos")
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		store = NewPhotoStore(dir, 5*1024*1024, logger)
	})

	ginkgo.Describe("Save", func() {
		ginkgo.It("should write the file under a generated name", func() {
			// Given
			fh := uploadedFile("me.png", "image/png", pngOfSize(2048))

			// When
			photo, err := store.Save(ctx, fh)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(photo.OriginalName).To(gomega.Equal("me.png"))
			gomega.Expect(photo.Size).To(gomega.Equal(int64(2048)))
			gomega.Expect(photo.MimeType).To(gomega.Equal("image/png"))

			name := filepath.Base(photo.Path)
			gomega.Expect(name).To(gomega.HavePrefix("karyawan_"))
			gomega.Expect(name).To(gomega.HaveSuffix(".png"))
			gomega.Expect(dirEntries(dir)).To(gomega.ConsistOf(name))

			stored, err := os.ReadFile(filepath.FromSlash(photo.Path))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(stored).To(gomega.HaveLen(2048))
		})

		ginkgo.It("should canonicalise image/jpg", func() {
			content := append([]byte("\xFF\xD8\xFF\xE0"), make([]byte, 100)...)

			photo, err := store.Save(ctx, uploadedFile("me.jpg", "image/jpg", content))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(photo.MimeType).To(gomega.Equal("image/jpeg"))
			gomega.Expect(photo.Path).To(gomega.HaveSuffix(".jpg"))
		})

		ginkgo.It("should give two uploads of the same file different names", func() {
			first, err := store.Save(ctx, uploadedFile("me.png", "image/png", pngOfSize(64)))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			second, err := store.Save(ctx, uploadedFile("me.png", "image/png", pngOfSize(64)))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(first.Path).ToNot(gomega.Equal(second.Path))
			gomega.Expect(dirEntries(dir)).To(gomega.HaveLen(2))
		})

		ginkgo.It("should reject a file over the limit without writing", func() {
			fh := uploadedFile("big.png", "image/png", pngOfSize(6*1024*1024))

			_, err := store.Save(ctx, fh)

			gomega.Expect(photoFieldMessage(err)).To(gomega.Equal("File too large. Maximum size is 5MB, got: 6291456 bytes"))
			gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject an empty file", func() {
			_, err := store.Save(ctx, uploadedFile("empty.png", "image/png", nil))

			gomega.Expect(photoFieldMessage(err)).To(gomega.Equal("File is empty"))
		})

		ginkgo.It("should reject a declared type outside the allow-list", func() {
			_, err := store.Save(ctx, uploadedFile("doc.gif", "image/gif", []byte("GIF89a")))

			gomega.Expect(photoFieldMessage(err)).To(gomega.Equal("Invalid file type. Only JPEG, PNG, and WebP images are allowed. Got: image/gif"))
		})

		ginkgo.It("should reject content that does not match an image type", func() {
			fh := uploadedFile("fake.png", "image/png", []byte("#!/bin/sh\nrm -rf /\n"))

			_, err := store.Save(ctx, fh)

			gomega.Expect(photoFieldMessage(err)).To(gomega.ContainSubstring("File content is not"))
			gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Check", func() {
		ginkgo.It("should accept a real image without writing it", func() {
			gomega.Expect(store.Check(uploadedFile("me.png", "image/png", pngOfSize(256)))).To(gomega.Succeed())
			gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
		})

		ginkgo.It("should reject content that is not an image", func() {
			// Given
			fh := uploadedFile("fake.jpg", "image/jpeg", []byte("hello"))

			// When
			err := store.Check(fh)

			// Then
			gomega.Expect(photoFieldMessage(err)).To(gomega.Equal("Invalid file type. File content is not a JPEG, PNG, or WebP image"))
			gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
		})

		ginkgo.It("should report header problems before reading the content", func() {
			err := store.Check(uploadedFile("doc.gif", "image/gif", []byte("GIF89a")))

			gomega.Expect(photoFieldMessage(err)).To(gomega.HavePrefix("Invalid file type. Only JPEG"))
		})
	})

	ginkgo.Describe("Orphans", func() {
		var (
			kept, stale, fresh string
			now                time.Time
		)

		writeFile := func(name string, modified time.Time) string {
			path := filepath.Join(dir, name)
			gomega.Expect(os.WriteFile(path, pngOfSize(32), 0o644)).To(gomega.Succeed())
			gomega.Expect(os.Chtimes(path, modified, modified)).To(gomega.Succeed())
			return path
		}

		ginkgo.BeforeEach(func() {
			now = time.Now()
			gomega.Expect(os.MkdirAll(dir, 0o755)).To(gomega.Succeed())
			kept = writeFile("karyawan_kept.png", now.Add(-48*time.Hour))
			stale = writeFile("karyawan_stale.png", now.Add(-48*time.Hour))
			fresh = writeFile("karyawan_fresh.png", now.Add(-time.Minute))
		})

		ginkgo.It("should report only unreferenced files older than the cutoff", func() {
			// When
			orphans, err := store.Orphans([]string{filepath.ToSlash(kept)}, now.Add(-time.Hour))

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(orphans).To(gomega.ConsistOf(filepath.ToSlash(stale)))
			gomega.Expect(orphans).ToNot(gomega.ContainElement(filepath.ToSlash(fresh)))
		})

		ginkgo.It("should include recent files once the cutoff passes them", func() {
			orphans, err := store.Orphans([]string{filepath.ToSlash(kept)}, now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(orphans).To(gomega.ConsistOf(filepath.ToSlash(stale), filepath.ToSlash(fresh)))
		})

		ginkgo.It("should treat a missing directory as empty", func() {
			empty := NewPhotoStore(filepath.Join(dir, "missing"), 1024, logger)

			orphans, err := empty.Orphans(nil, now)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(orphans).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Delete", func() {
		ginkgo.It("should remove a stored photo and tolerate a second call", func() {
			photo, err := store.Save(ctx, uploadedFile("me.png", "image/png", pngOfSize(64)))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(store.Delete(photo.Path)).To(gomega.Succeed())
			gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
			gomega.Expect(store.Delete(photo.Path)).To(gomega.Succeed())
		})

		ginkgo.It("should refuse paths outside the photo directory", func() {
			outside := filepath.Join(filepath.Dir(dir), "keep.txt")
			gomega.Expect(os.WriteFile(outside, []byte("x"), 0o644)).To(gomega.Succeed())

			gomega.Expect(store.Delete(outside)).ToNot(gomega.Succeed())
			gomega.Expect(store.Delete(filepath.Join(dir, "..", "keep.txt"))).ToNot(gomega.Succeed())
			gomega.Expect(outside).To(gomega.BeAnExistingFile())
		})
	})

	ginkgo.It("should delete files announced on the bus", func() {
		// Given
		bus := events.NewEventBus(logger)
		store.Subscribe(bus)
		photo, err := store.Save(ctx, uploadedFile("me.png", "image/png", pngOfSize(64)))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		// When
		gomega.Expect(bus.Publish(ctx, events.NewPhotoDiscardedEvent(1, photo.Path, events.ReasonRemoved))).To(gomega.Succeed())
		bus.Wait()

		// Then
		gomega.Expect(dirEntries(dir)).To(gomega.BeEmpty())
	})

	ginkgo.It("should report a refused deletion to a synchronous publisher", func() {
		bus := events.NewEventBus(logger)
		store.Subscribe(bus)

		err := bus.PublishSync(ctx, events.NewPhotoDiscardedEvent(0, "/etc/passwd", events.ReasonWriteAbandoned))

		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("refusing to delete")))
	})

	ginkgo.Describe("FileServer", func() {
		ginkgo.It("should serve a stored photo under its public URL", func() {
			photo, err := store.Save(ctx, uploadedFile("me.png", "image/png", pngOfSize(64)))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rec := httptest.NewRecorder()
			store.FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PublicURL(photo.Path), nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.Len()).To(gomega.Equal(64))
		})

		ginkgo.It("should not list the directory", func() {
			rec := httptest.NewRecorder()
			store.FileServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PublicPrefix, nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.It("should build public URLs from the file name only", func() {
		gomega.Expect(PublicURL("uploads/karyawan/photos/karyawan_x.png")).To(gomega.Equal("/uploads/karyawan/photos/karyawan_x.png"))
		gomega.Expect(strings.HasPrefix(PublicURL("/srv/other/dir/a.webp"), PublicPrefix)).To(gomega.BeTrue())
	})
})
