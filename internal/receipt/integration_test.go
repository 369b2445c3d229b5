package receipt_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-reader/internal/extraction"
	"github.com/zombor/receipt-reader/internal/receipt"
	"github.com/zombor/receipt-reader/internal/scanning"
)

// layoutRecognizer returns fixed word fragments regardless of the image
type layoutRecognizer struct {
	fragments []extraction.TextFragment
	runErr    error
}

func (l *layoutRecognizer) Run(ctx context.Context, imageData []byte, contentType string) (*scanning.RawOutput, error) {
	if l.runErr != nil {
		return nil, l.runErr
	}
	return &scanning.RawOutput{Fragments: l.fragments}, nil
}

func (l *layoutRecognizer) Name() string { return "layout" }

func (l *layoutRecognizer) Close() error { return nil }

var _ = Describe("Integration", func() {
	var (
		tempDir    string
		db         receipt.DB
		store      receipt.Storage
		recognizer *layoutRecognizer
		server     *receipt.Server
		ghServer   *ghttp.Server
	)

	upload := func() *http.Response {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "struk.png")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("not really a png"))
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).To(Succeed())

		resp, err := http.Post(ghServer.URL()+"/api/scans", writer.FormDataContentType(), body)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	BeforeEach(func() {
		tempDir = GinkgoT().TempDir()

		var err error
		db, err = receipt.NewBoltDB(filepath.Join(tempDir, "test.db"))
		Expect(err).NotTo(HaveOccurred())

		store, err = receipt.NewLocalStorage(filepath.Join(tempDir, "uploads"))
		Expect(err).NotTo(HaveOccurred())

		// two words per row, slightly misaligned on Y like real OCR output
		recognizer = &layoutRecognizer{
			fragments: []extraction.TextFragment{
				{Text: "33.000", X: 200, Y: 160, Height: 20},
				{Text: "Nasi Goreng", X: 10, Y: 100, Height: 20},
				{Text: "TOTAL", X: 10, Y: 161, Height: 20},
				{Text: "25.000", X: 200, Y: 102, Height: 20},
				{Text: "8.000", X: 200, Y: 129, Height: 20},
				{Text: "Es Teh", X: 10, Y: 131, Height: 20},
			},
		}
	})

	JustBeforeEach(func() {
		reader := scanning.NewReader(recognizer, 0)
		service := receipt.NewService(db, reader, store)
		server = receipt.NewServer(service, receipt.BasicAuth{})
		ghServer = ghttp.NewServer()
	})

	AfterEach(func() {
		if ghServer != nil {
			ghServer.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	It("should upload, read and save a receipt", func() {
		ghServer.AppendHandlers(server.ServeHTTP, server.ServeHTTP)

		resp := upload()
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var scan receipt.Scan
		Expect(json.NewDecoder(resp.Body).Decode(&scan)).To(Succeed())
		Expect(scan.Backend).To(Equal("layout"))
		Expect(scan.Failed).To(BeFalse())
		Expect(scan.Total).To(Equal(33000.0))
		Expect(scan.Items).To(HaveLen(2))
		Expect(scan.Items[0].Name).To(Equal("Nasi Goreng"))
		Expect(scan.Items[0].TotalPrice).To(Equal(25000.0))
		Expect(scan.Items[1].Name).To(Equal("Es Teh"))
		Expect(scan.Items[1].TotalPrice).To(Equal(8000.0))

		_, err := store.Get(scan.Filename)
		Expect(err).NotTo(HaveOccurred())

		saved, err := db.GetScan(scan.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Items).To(Equal(scan.Items))

		fileResp, err := http.Get(ghServer.URL() + "/api/scans/" + scan.ID + "/file")
		Expect(err).NotTo(HaveOccurred())
		defer fileResp.Body.Close()
		Expect(fileResp.StatusCode).To(Equal(http.StatusOK))
		Expect(fileResp.Header.Get("Content-Type")).To(Equal("image/png"))
	})

	When("the recognizer sees no items", func() {
		BeforeEach(func() {
			recognizer.fragments = []extraction.TextFragment{
				{Text: "TERIMA KASIH", X: 10, Y: 10, Height: 20},
			}
		})

		It("should save a failed scan", func() {
			ghServer.AppendHandlers(server.ServeHTTP)

			resp := upload()
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var scan receipt.Scan
			Expect(json.NewDecoder(resp.Body).Decode(&scan)).To(Succeed())
			Expect(scan.Failed).To(BeTrue())
			Expect(scan.Total).To(BeZero())
			Expect(scan.Items).To(HaveLen(1))
			Expect(scan.Items[0].Name).To(Equal(extraction.FailedItemName))
		})
	})

	When("the recognizer fails", func() {
		BeforeEach(func() {
			recognizer.runErr = errors.New("engine crashed")
		})

		It("should return 422 and keep nothing", func() {
			ghServer.AppendHandlers(server.ServeHTTP)

			resp := upload()
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))

			scans, err := db.ListScans()
			Expect(err).NotTo(HaveOccurred())
			Expect(scans).To(BeEmpty())
		})
	})
})
