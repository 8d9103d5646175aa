package validation

import (
	"encoding/json"
	"net/http"

	errors "github.com/frahmantamala/karyawan-management/internal"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func fieldErrors(err *errors.AppError) []errors.ValidationError {
	gomega.Expect(err).ToNot(gomega.BeNil())
	details, ok := err.Details.(errors.ValidationErrors)
	gomega.Expect(ok).To(gomega.BeTrue())
	return details.Errors
}

var _ = ginkgo.Describe("ParseGaji", func() {
	ginkgo.DescribeTable("accepts the inclusive band",
		func(raw string, want int64) {
			got, err := ParseGaji(raw)
			gomega.Expect(err).To(gomega.BeNil())
			gomega.Expect(got).To(gomega.Equal(want))
		},
		ginkgo.Entry("lower bound", "1000000", int64(1_000_000)),
		ginkgo.Entry("upper bound", "100000000", int64(100_000_000)),
		ginkgo.Entry("surrounding whitespace", " 5000000 ", int64(5_000_000)),
	)

	ginkgo.DescribeTable("rejects values outside the band",
		func(raw string) {
			_, err := ParseGaji(raw)
			errs := fieldErrors(err)
			gomega.Expect(errs).To(gomega.HaveLen(1))
			gomega.Expect(errs[0].Field).To(gomega.Equal("gaji"))
			gomega.Expect(errs[0].Message).To(gomega.Equal("Gaji harus antara 1,000,000 - 100,000,000"))
			gomega.Expect(errs[0].Code).To(gomega.Equal(string(errors.ErrCodeInvalidSalary)))
		},
		ginkgo.Entry("just below", "999999"),
		ginkgo.Entry("just above", "100000001"),
		ginkgo.Entry("negative", "-5000000"),
	)

	ginkgo.DescribeTable("rejects non-numbers",
		func(raw string) {
			_, err := ParseGaji(raw)
			errs := fieldErrors(err)
			gomega.Expect(errs[0].Message).To(gomega.Equal("Gaji harus berupa angka yang valid"))
		},
		ginkgo.Entry("letters", "abc"),
		ginkgo.Entry("empty", ""),
		ginkgo.Entry("decimal", "5000000.50"),
	)
})

var _ = ginkgo.Describe("ParsePositiveID", func() {
	ginkgo.It("should parse a positive id", func() {
		id, err := ParsePositiveID("kantor_id", "12")
		gomega.Expect(err).To(gomega.BeNil())
		gomega.Expect(id).To(gomega.Equal(int64(12)))
	})

	ginkgo.DescribeTable("should name the field when rejecting",
		func(raw string) {
			_, err := ParsePositiveID("jabatan_id", raw)
			errs := fieldErrors(err)
			gomega.Expect(errs[0].Field).To(gomega.Equal("jabatan_id"))
			gomega.Expect(errs[0].Message).To(gomega.Equal("jabatan_id harus berupa angka positif yang valid"))
		},
		ginkgo.Entry("zero", "0"),
		ginkgo.Entry("negative", "-1"),
		ginkgo.Entry("text", "satu"),
	)
})

var _ = ginkgo.Describe("ValidationBuilder", func() {
	ginkgo.It("should pass when every field is valid", func() {
		v := NewValidator()
		v.Field("nama", "Budi").Required("Nama wajib diisi").Length(2, 50, "Nama harus antara 2-50 karakter")
		v.Field("email", "budi@x.com").Email("Format email tidak valid")

		gomega.Expect(v.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("should report only the first failure of each field", func() {
		// Given
		v := NewValidator()
		v.Field("nama", " ").Required("Nama wajib diisi").Length(2, 50, "Nama harus antara 2-50 karakter")
		v.Field("gaji", "10").Gaji()

		// When
		err := v.Validate()

		// Then
		gomega.Expect(err.StatusCode).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(err.Messages()).To(gomega.Equal([]string{
			"nama: Nama wajib diisi",
			"gaji: Gaji harus antara 1,000,000 - 100,000,000",
		}))
	})

	ginkgo.It("should count characters rather than bytes", func() {
		v := NewValidator()
		v.Field("nama", "Élo").Length(2, 3, "too long")

		gomega.Expect(v.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("should skip nil optional strings", func() {
		var missing *string
		v := NewValidator()
		v.Field("alamat", missing).Length(5, 255, "Alamat harus antara 5-255 karakter")

		gomega.Expect(v.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("should range-check coordinates", func() {
		lat := 91.0
		v := NewValidator()
		v.Field("latitude", &lat).FloatRange(-90, 90, "Latitude harus antara -90 dan 90", errors.ErrCodeInvalidCoord)

		errs := fieldErrors(v.Validate())
		gomega.Expect(errs[0].Code).To(gomega.Equal(string(errors.ErrCodeInvalidCoord)))
	})

	ginkgo.It("should merge several results in order", func() {
		first := errors.NewValidationFieldError("kantor_id", "Kantor dengan ID tersebut tidak ditemukan", errors.ErrCodeInvalidReference)
		second := errors.NewValidationFieldError("jabatan_id", "Jabatan dengan ID tersebut tidak ditemukan", errors.ErrCodeInvalidReference)

		merged := Merge(first, nil, second)

		gomega.Expect(merged.Messages()).To(gomega.Equal([]string{
			"kantor_id: Kantor dengan ID tersebut tidak ditemukan",
			"jabatan_id: Jabatan dengan ID tersebut tidak ditemukan",
		}))
		gomega.Expect(Merge(nil, nil)).To(gomega.BeNil())
	})
})

var _ = ginkgo.Describe("NumericString", func() {
	type body struct {
		Gaji NumericString `json:"gaji"`
	}

	ginkgo.DescribeTable("decodes strings, numbers and null",
		func(raw, want string) {
			var b body
			gomega.Expect(json.Unmarshal([]byte(raw), &b)).To(gomega.Succeed())
			gomega.Expect(b.Gaji.String()).To(gomega.Equal(want))
		},
		ginkgo.Entry("string", `{"gaji":"5000000"}`, "5000000"),
		ginkgo.Entry("number", `{"gaji":5000000}`, "5000000"),
		ginkgo.Entry("null", `{"gaji":null}`, ""),
	)

	ginkgo.It("should reject booleans", func() {
		var b body
		gomega.Expect(json.Unmarshal([]byte(`{"gaji":true}`), &b)).ToNot(gomega.Succeed())
	})
})
