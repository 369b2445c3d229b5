package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-reader/internal/extraction"
)

var _ = Describe("Scan", func() {
	Describe("ItemMap", func() {
		It("keys items by ID", func() {
			scan := &Scan{Items: []extraction.Item{
				{ID: "a", Name: "Nasi Goreng", Count: 1, TotalPrice: 25000},
				{ID: "b", Name: "Es Teh", Count: 1, TotalPrice: 8000},
			}}

			m := scan.ItemMap()
			Expect(m).To(HaveLen(2))
			Expect(m["b"].Name).To(Equal("Es Teh"))
		})

		It("is empty for a scan without items", func() {
			Expect((&Scan{}).ItemMap()).To(BeEmpty())
		})
	})
})
