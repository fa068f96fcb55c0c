package core

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

var frenchMonths = [...]string{"Jan.", "Fév.", "Mar.", "Avr.", "Mai.", "Jui.", "Jui.", "Aoû.", "Sep.", "Oct.", "Nov.", "Déc."}

// FormatDate renders an ISO date as "4 Avr. 04". Unparsable input is
// returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(iso))
	if err != nil {
		return iso
	}
	year := strconv.Itoa(t.Year())
	return strconv.Itoa(t.Day()) + " " + frenchMonths[t.Month()-1] + " " + year[len(year)-2:]
}

// FormatStatus maps a bill status to the label shown to employees.
func FormatStatus(s Status) string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refused"
	default:
		return string(s)
	}
}

// SortByDateDesc orders items newest-first by the date returned from key.
// Dates are zero-padded ISO strings so a byte compare is enough; ties keep
// their original order.
func SortByDateDesc[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}

// SortBillsNewestFirst is SortByDateDesc applied to bills.
func SortBillsNewestFirst(bills []Bill) {
	SortByDateDesc(bills, func(b Bill) string { return b.Date })
}
