package karyawan_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/frahmantamala/karyawan-management/internal/app/apptest"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
	"github.com/frahmantamala/karyawan-management/internal/karyawan"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Karyawan Handler Integration", func() {
	var (
		env      *apptest.Env
		token    string
		photoDir string
	)

	photoFiles := func() []string {
		entries, err := os.ReadDir(photoDir)
		if os.IsNotExist(err) {
			return nil
		}
		Expect(err).NotTo(HaveOccurred())
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		return names
	}

	countRows := func(model interface{}) int64 {
		var n int64
		Expect(env.DB.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	decode := func(resp *apptest.Response) *karyawan.Karyawan {
		var k karyawan.Karyawan
		Expect(resp.DecodeData(&k)).To(Succeed())
		return &k
	}

	body := func(nama string) map[string]interface{} {
		return map[string]interface{}{
			"nama":       nama,
			"gaji":       "5000000",
			"kantor_id":  "1",
			"jabatan_id": "1",
		}
	}

	create := func(payload map[string]interface{}) *apptest.Response {
		resp, err := env.JSON(http.MethodPost, "/api/karyawans", token, payload)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	createWithPhoto := func(nama string, foto *apptest.File) *apptest.Response {
		resp, err := env.Multipart(http.MethodPost, "/api/karyawans/with-photo", token, map[string]string{
			"nama":       nama,
			"gaji":       "5000000",
			"kantor_id":  "1",
			"jabatan_id": "1",
		}, foto)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	png := func(n int) *apptest.File {
		return &apptest.File{Name: "foto.png", ContentType: "image/png", Content: apptest.PNG(n)}
	}

	BeforeEach(func() {
		var err error
		photoDir = filepath.Join(GinkgoT().TempDir(), "photos")
		env, err = apptest.New(photoDir, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(env.Close)

		token, err = env.Login("admin")
		Expect(err).NotTo(HaveOccurred())

		kantor, err := env.JSON(http.MethodPost, "/api/kantors", token, map[string]interface{}{
			"nama": "Kantor Pusat", "alamat": "Jl. Sudirman No. 1", "longitude": 106.8229, "latitude": -6.1944,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(kantor.Status).To(Equal(http.StatusCreated))
		jabatan, err := env.JSON(http.MethodPost, "/api/jabatans", token, map[string]interface{}{"nama_jabatan": "Staff"})
		Expect(err).NotTo(HaveOccurred())
		Expect(jabatan.Status).To(Equal(http.StatusCreated))
	})

	Describe("create", func() {
		It("should provision a login for a karyawan without user_id", func() {
			// When
			resp := create(body("Budi Santoso"))

			// Then
			Expect(resp.Status).To(Equal(http.StatusCreated))
			Expect(resp.Message).To(Equal("Karyawan created successfully"))
			k := decode(resp)
			Expect(k.Nama).To(Equal("Budi Santoso"))
			Expect(k.Gaji).To(Equal(int64(5000000)))
			Expect(k.UserID).NotTo(BeNil())

			var u userDatamodel.User
			Expect(env.DB.First(&u, *k.UserID).Error).To(Succeed())
			Expect(u.Username).To(Equal("budisantoso"))
			Expect(u.Email).To(Equal("budisantoso@karyawan.local"))

			login, err := env.JSON(http.MethodPost, "/api/auth/login", "", map[string]string{
				"username_or_email": "budisantoso",
				"password":          env.Config.Security.DefaultEmployeePassword,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(login.Status).To(Equal(http.StatusOK))
		})

		It("should link karyawans with the same derived username to one account", func() {
			first := decode(create(body("Budi Santoso")))
			second := decode(create(body("budi  santoso")))

			Expect(*second.UserID).To(Equal(*first.UserID))
			Expect(countRows(&userDatamodel.User{})).To(Equal(int64(2)))
		})

		It("should keep an explicit user_id", func() {
			payload := body("Siti")
			payload["user_id"] = 1

			k := decode(create(payload))

			Expect(*k.UserID).To(Equal(int64(1)))
			Expect(countRows(&userDatamodel.User{})).To(Equal(int64(1)))
		})

		It("should report a conflict when the derived account cannot be used", func() {
			// Given: someone else holds the mailbox the derived account would get
			_, err := env.JSON(http.MethodPost, "/api/auth/register", "", map[string]string{
				"username": "squatter",
				"email":    "budi@karyawan.local",
				"password": "secret1",
			})
			Expect(err).NotTo(HaveOccurred())

			// When
			resp := create(body("Budi"))

			// Then
			Expect(resp.Status).To(Equal(http.StatusConflict))
			Expect(resp.Errors).To(Equal([]string{"Username untuk karyawan sudah digunakan oleh akun lain"}))
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
		})

		It("should reject a missing kantor without inserting", func() {
			payload := body("Budi")
			payload["kantor_id"] = "999"

			resp := create(payload)

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"kantor_id: Kantor dengan ID tersebut tidak ditemukan"}))
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
			Expect(countRows(&userDatamodel.User{})).To(Equal(int64(1)))
		})

		It("should report every missing reference at once", func() {
			payload := body("Budi")
			payload["kantor_id"] = "998"
			payload["jabatan_id"] = "999"
			payload["user_id"] = 777

			resp := create(payload)

			Expect(resp.Errors).To(Equal([]string{
				"kantor_id: Kantor dengan ID tersebut tidak ditemukan",
				"jabatan_id: Jabatan dengan ID tersebut tidak ditemukan",
				"user_id: User dengan ID tersebut tidak ditemukan",
			}))
		})

		DescribeTable("should bound gaji",
			func(gaji interface{}, status int) {
				payload := body("Budi")
				payload["gaji"] = gaji

				resp := create(payload)

				Expect(resp.Status).To(Equal(status), "%v", resp.Errors)
			},
			Entry("below minimum", "999999", http.StatusBadRequest),
			Entry("minimum", "1000000", http.StatusCreated),
			Entry("maximum", "100000000", http.StatusCreated),
			Entry("above maximum", "100000001", http.StatusBadRequest),
			Entry("not a number", "abc", http.StatusBadRequest),
			Entry("bare JSON number", 2500000, http.StatusCreated),
		)

		DescribeTable("should validate nama",
			func(nama, message string) {
				resp := create(body(nama))

				Expect(resp.Status).To(Equal(http.StatusBadRequest))
				Expect(resp.Errors).To(ConsistOf(message))
			},
			Entry("empty", "  ", "nama: Nama wajib diisi"),
			Entry("too short", "B", "nama: Nama harus antara 2-50 karakter"),
			Entry("injection", "Budi'; DROP TABLE karyawan", "nama: Input mengandung karakter yang tidak diizinkan"),
		)

		It("should reject ids that are not positive numbers", func() {
			payload := body("Budi")
			payload["jabatan_id"] = "-1"

			resp := create(payload)

			Expect(resp.Errors).To(ConsistOf("jabatan_id: jabatan_id harus berupa angka positif yang valid"))
		})
	})

	Describe("update", func() {
		It("should keep the account link when user_id is omitted", func() {
			created := decode(create(body("Budi")))

			payload := body("Budi Baru")
			payload["gaji"] = "9000000"
			resp, err := env.JSON(http.MethodPut, "/api/karyawans/1", token, payload)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusOK))
			updated := decode(resp)
			Expect(updated.Nama).To(Equal("Budi Baru"))
			Expect(updated.Gaji).To(Equal(int64(9000000)))
			Expect(*updated.UserID).To(Equal(*created.UserID))
			Expect(countRows(&userDatamodel.User{})).To(Equal(int64(2)))
		})

		It("should reject a missing jabatan", func() {
			create(body("Budi"))
			payload := body("Budi")
			payload["jabatan_id"] = "42"

			resp, err := env.JSON(http.MethodPut, "/api/karyawans/1", token, payload)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"jabatan_id: Jabatan dengan ID tersebut tidak ditemukan"}))
		})
	})

	Describe("with kantor", func() {
		It("should join kantor and jabatan into the listing", func() {
			create(body("Budi"))
			create(body("Siti"))

			resp, err := env.JSON(http.MethodGet, "/api/karyawans/with-kantor", token, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("List of karyawans with kantor retrieved successfully"))

			var rows []karyawan.Detail
			Expect(resp.DecodeData(&rows)).To(Succeed())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Nama).To(Equal("Budi"))
			Expect(rows[0].Kantor.Nama).To(Equal("Kantor Pusat"))
			Expect(rows[0].Kantor.Longitude).To(Equal(106.8229))
			Expect(rows[1].Jabatan.NamaJabatan).To(Equal("Staff"))
		})

		It("should fetch one karyawan with its kantor", func() {
			create(body("Budi"))

			resp, err := env.JSON(http.MethodGet, "/api/karyawans/1/with-kantor", token, nil)
			Expect(err).NotTo(HaveOccurred())

			var d karyawan.Detail
			Expect(resp.DecodeData(&d)).To(Succeed())
			Expect(d.ID).To(Equal(int64(1)))
			Expect(d.Kantor.ID).To(Equal(int64(1)))
			Expect(d.Jabatan.ID).To(Equal(int64(1)))
		})

		It("should report a missing karyawan as 404", func() {
			resp, err := env.JSON(http.MethodGet, "/api/karyawans/5/with-kantor", token, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusNotFound))
			Expect(resp.Message).To(Equal("Karyawan not found"))
		})
	})

	Describe("photos", func() {
		It("should store the photo and serve it under foto_url", func() {
			// When
			resp := createWithPhoto("Budi", png(4096))

			// Then
			Expect(resp.Status).To(Equal(http.StatusCreated), "%v", resp.Errors)
			k := decode(resp)
			Expect(k.FotoPath).NotTo(BeNil())
			Expect(*k.FotoOriginalName).To(Equal("foto.png"))
			Expect(*k.FotoSize).To(Equal(int64(4096)))
			Expect(*k.FotoMimeType).To(Equal("image/png"))
			Expect(photoFiles()).To(ConsistOf(filepath.Base(*k.FotoPath)))

			rec := httptest.NewRecorder()
			env.App.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, *k.FotoURL, nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.Len()).To(Equal(4096))
		})

		It("should create without a photo when none is sent", func() {
			resp := createWithPhoto("Budi", nil)

			Expect(resp.Status).To(Equal(http.StatusCreated))
			Expect(decode(resp).FotoPath).To(BeNil())
			Expect(photoFiles()).To(BeEmpty())
		})

		It("should not write the photo when the payload is invalid", func() {
			resp, err := env.Multipart(http.MethodPost, "/api/karyawans/with-photo", token, map[string]string{
				"nama": "Budi", "gaji": "5000000", "kantor_id": "999", "jabatan_id": "1",
			}, png(1024))
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"kantor_id: Kantor dengan ID tersebut tidak ditemukan"}))
			env.App.Bus.Wait()
			Expect(photoFiles()).To(BeEmpty())
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
		})

		It("should reject a photo above the limit with its size", func() {
			resp := createWithPhoto("Budi", png(5*1024*1024+512*1024))

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"foto: File too large. Maximum size is 5MB, got: 5767168 bytes"}))
			Expect(photoFiles()).To(BeEmpty())
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
		})

		It("should reject a body far above the limit while parsing", func() {
			resp := createWithPhoto("Budi", png(7*1024*1024))

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Success).To(BeFalse())
			Expect(photoFiles()).To(BeEmpty())
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
		})

		It("should reject a type outside the allow-list", func() {
			resp := createWithPhoto("Budi", &apptest.File{Name: "anim.gif", ContentType: "image/gif", Content: []byte("GIF89a....")})

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"foto: Invalid file type. Only JPEG, PNG, and WebP images are allowed. Got: image/gif"}))
		})

		It("should reject an image type whose content is not an image before provisioning a user", func() {
			// Given
			usersBefore := countRows(&userDatamodel.User{})

			// When
			resp := createWithPhoto("Budi Santoso", &apptest.File{Name: "fake.png", ContentType: "image/png", Content: []byte("just some text, not an image")})

			// Then
			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"foto: Invalid file type. File content is not a JPEG, PNG, or WebP image"}))
			Expect(countRows(&userDatamodel.User{})).To(Equal(usersBefore))
			Expect(countRows(&karyawanDatamodel.Karyawan{})).To(BeZero())
			Expect(photoFiles()).To(BeEmpty())
		})

		It("should reject a replacement whose content is not an image", func() {
			create(body("Budi"))

			resp, err := env.Multipart(http.MethodPut, "/api/karyawans/1/photo", token, nil,
				&apptest.File{Name: "fake.png", ContentType: "image/png", Content: []byte("plain text")})
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(photoFiles()).To(BeEmpty())
		})

		It("should replace a photo and discard the old file", func() {
			// Given
			old := decode(createWithPhoto("Budi", png(1024)))
			oldName := filepath.Base(*old.FotoPath)

			// When
			resp, err := env.Multipart(http.MethodPut, "/api/karyawans/1/photo", token, nil, png(2048))
			Expect(err).NotTo(HaveOccurred())

			// Then
			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(resp.Message).To(Equal("Photo for karyawan with ID 1 updated successfully"))
			updated := decode(resp)
			Expect(*updated.FotoSize).To(Equal(int64(2048)))
			newName := filepath.Base(*updated.FotoPath)
			Expect(newName).NotTo(Equal(oldName))
			Eventually(photoFiles).Should(ConsistOf(newName))
		})

		It("should require a file when replacing", func() {
			create(body("Budi"))

			resp, err := env.Multipart(http.MethodPut, "/api/karyawans/1/photo", token, nil, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusBadRequest))
			Expect(resp.Errors).To(Equal([]string{"foto: File foto wajib diunggah"}))
		})

		It("should not store a photo for a missing karyawan", func() {
			resp, err := env.Multipart(http.MethodPut, "/api/karyawans/9/photo", token, nil, png(1024))
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusNotFound))
			Expect(photoFiles()).To(BeEmpty())
		})

		It("should remove a photo and then report it missing", func() {
			createWithPhoto("Budi", png(1024))

			resp, err := env.JSON(http.MethodDelete, "/api/karyawans/1/photo", token, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(http.StatusOK))
			Expect(decode(resp).FotoPath).To(BeNil())
			Eventually(photoFiles).Should(BeEmpty())

			again, err := env.JSON(http.MethodDelete, "/api/karyawans/1/photo", token, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Status).To(Equal(http.StatusNotFound))
			Expect(again.Message).To(Equal("Photo not found"))
		})

		It("should delete the photo together with the karyawan", func() {
			createWithPhoto("Budi", png(1024))
			Expect(photoFiles()).To(HaveLen(1))

			resp, err := env.JSON(http.MethodDelete, "/api/karyawans/1", token, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Status).To(Equal(http.StatusOK))
			Eventually(photoFiles).Should(BeEmpty())
		})
	})
})
