package receipt

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-reader/internal/extraction"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveScan", func() {
		var (
			scan *Scan
			err  error
		)

		BeforeEach(func() {
			scan = &Scan{
				ID:          "test-id",
				Filename:    "test-id_struk.jpg",
				ContentType: "image/jpeg",
				Backend:     "tesseract",
				Items: []extraction.Item{
					{ID: "i1", Name: "Nasi Goreng", Count: 1, TotalPrice: 25000},
					{ID: "i2", Name: "Es Teh", Count: 1, TotalPrice: 8000},
				},
				Total:     33000,
				CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveScan(scan)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should round-trip the scan", func() {
				got, err := db.GetScan("test-id")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Backend).To(Equal("tesseract"))
				Expect(got.Total).To(Equal(33000.0))
				Expect(got.CreatedAt.Equal(scan.CreatedAt)).To(BeTrue())
			})

			It("should keep item order", func() {
				got, err := db.GetScan("test-id")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Items).To(Equal(scan.Items))
			})
		})

		When("saving over an existing scan", func() {
			JustBeforeEach(func() {
				scan.Total = 1
				Expect(db.SaveScan(scan)).To(Succeed())
			})

			It("should replace it", func() {
				got, err := db.GetScan("test-id")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Total).To(Equal(1.0))
			})
		})
	})

	Describe("GetScan", func() {
		When("the scan does not exist", func() {
			It("should return ErrNotFound", func() {
				_, err := db.GetScan("non-existent")
				Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			})
		})
	})

	Describe("ListScans", func() {
		When("there are no scans", func() {
			It("should return an empty slice", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				Expect(scans).NotTo(BeNil())
				Expect(scans).To(BeEmpty())
			})
		})

		When("there are scans", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
				Expect(db.SaveScan(&Scan{ID: "a", CreatedAt: base})).To(Succeed())
				Expect(db.SaveScan(&Scan{ID: "b", CreatedAt: base.Add(2 * time.Hour)})).To(Succeed())
				Expect(db.SaveScan(&Scan{ID: "c", CreatedAt: base.Add(time.Hour)})).To(Succeed())
			})

			It("should return newest first", func() {
				scans, err := db.ListScans()
				Expect(err).NotTo(HaveOccurred())
				ids := make([]string, 0, len(scans))
				for _, s := range scans {
					ids = append(ids, s.ID)
				}
				Expect(ids).To(Equal([]string{"b", "c", "a"}))
			})
		})
	})

	Describe("DeleteScan", func() {
		When("the scan exists", func() {
			BeforeEach(func() {
				Expect(db.SaveScan(&Scan{ID: "gone"})).To(Succeed())
			})

			It("should remove it", func() {
				Expect(db.DeleteScan("gone")).To(Succeed())
				_, err := db.GetScan("gone")
				Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			})
		})

		When("the scan does not exist", func() {
			It("should return ErrNotFound", func() {
				Expect(errors.Is(db.DeleteScan("missing"), ErrNotFound)).To(BeTrue())
			})
		})
	})

	Describe("reopening", func() {
		It("should keep saved scans", func() {
			Expect(db.SaveScan(&Scan{ID: "persisted", Total: 5000})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			var err error
			db, err = NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())

			got, err := db.GetScan("persisted")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Total).To(Equal(5000.0))
		})
	})
})
