package memory

import "billed/internal/core"

const fixtureFileURL = "https://test.storage.tld/v0/b/billable-677b6.a…f-1.jpg?alt=media&token=c1640e12-a24b-4b11-ae52-529112e9602a"

// Fixtures returns the four demo bills of employee a@a, in fetch order.
func Fixtures() []core.Bill {
	return []core.Bill{
		{
			ID:           "47qAXb6fIm2zOKkLzMro",
			VAT:          "80",
			FileURL:      fixtureFileURL,
			Status:       core.StatusPending,
			Type:         "Hôtel et logement",
			Commentary:   "séminaire billed",
			Name:         "encore",
			FileName:     "preview-facture-free-201801-pdf-1.jpg",
			Date:         "2004-04-04",
			Amount:       core.Money{Cents: 40000},
			CommentAdmin: "ok",
			Email:        "a@a",
			Pct:          20,
		},
		{
			ID:           "BeKy5Mo4jkmdfPGYpTxZ",
			VAT:          "",
			Amount:       core.Money{Cents: 10000},
			Name:         "test1",
			FileName:     "1592770761.jpeg",
			Commentary:   "plop",
			Pct:          20,
			Type:         "Transports",
			Email:        "a@a",
			FileURL:      fixtureFileURL,
			Date:         "2001-01-01",
			Status:       core.StatusRefused,
			CommentAdmin: "en fait non",
		},
		{
			ID:           "UIUZtnPQvnbFnB0ozvJh",
			Name:         "test3",
			Email:        "a@a",
			Type:         "Services en ligne",
			VAT:          "60",
			Pct:          20,
			CommentAdmin: "bon bah d'accord",
			Amount:       core.Money{Cents: 30000},
			Status:       core.StatusAccepted,
			Date:         "2003-03-03",
			Commentary:   "",
			FileName:     "facture-client-php-exportee-dans-document-pdf-enregistre-sur-disque-dur.png",
			FileURL:      fixtureFileURL,
		},
		{
			ID:           "qcCK3SzECmaZAGRrHjaC",
			Status:       core.StatusRefused,
			Pct:          20,
			Amount:       core.Money{Cents: 20000},
			Email:        "a@a",
			Name:         "test2",
			VAT:          "40",
			FileName:     "preview-facture-free-201801-pdf-1.jpg",
			Date:         "2002-02-02",
			CommentAdmin: "pas la bonne facture",
			Commentary:   "test2",
			Type:         "Restaurants et bars",
			FileURL:      fixtureFileURL,
		},
	}
}
