package report

import (
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
	"time"

	"requisition/internal/domain"
)

var ErrNoOrdersInMonth = errors.New("no orders in month")

// byteOrderMark нужен табличным редакторам, чтобы распознать UTF-8
const byteOrderMark = "\ufeff"

// InMonth заказы, созданные в указанном месяце по часам loc
func InMonth(orders []domain.Order, year int, month time.Month, loc *time.Location) []domain.Order {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]domain.Order, 0)
	for _, o := range orders {
		t := o.CreatedAt.In(loc)
		if t.Year() == year && t.Month() == month {
			out = append(out, o)
		}
	}
	return out
}

type pivotRow struct {
	brand string
	name  string
	note  string
	units map[string]int64
	total int64
}

// WriteMonthlyCSV сводная таблица (бренд, товар) × сотрудник → физические единицы.
// Колонки сотрудников отсортированы по имени.
func WriteMonthlyCSV(w io.Writer, orders []domain.Order, year int, month time.Month, loc *time.Location) error {
	monthly := InMonth(orders, year, month, loc)
	if len(monthly) == 0 {
		return ErrNoOrdersInMonth
	}

	userSet := make(map[string]struct{})
	idx := make(map[string]int)
	rows := make([]pivotRow, 0)
	for _, o := range monthly {
		userSet[o.UserName] = struct{}{}
		for _, it := range o.Items {
			i, ok := idx[it.ProductID]
			if !ok {
				i = len(rows)
				idx[it.ProductID] = i
				rows = append(rows, pivotRow{brand: it.Brand, name: it.ProductName, note: it.Note, units: make(map[string]int64)})
			}
			n := it.PhysicalUnits()
			rows[i].units[o.UserName] += n
			rows[i].total += n
		}
	}
	users := make([]string, 0, len(userSet))
	for u := range userSet {
		users = append(users, u)
	}
	sort.Strings(users)

	if _, err := io.WriteString(w, byteOrderMark); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	header := append([]string{"Brand", "Product"}, users...)
	header = append(header, "Total", "Note")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, r.brand, r.name)
		for _, u := range users {
			rec = append(rec, strconv.FormatInt(r.units[u], 10))
		}
		rec = append(rec, strconv.FormatInt(r.total, 10), r.note)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
