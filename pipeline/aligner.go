package pipeline

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/LilVoxy/harga_pangan/models"
	"gonum.org/v1/gonum/mat"
)

// DuplicatePolicy определяет, какое значение берется при повторе пары (дата, ряд)
type DuplicatePolicy int

const (
	// KeepLast берет последнее значение в порядке входа. Хранилище отдает дубликаты
	// по возрастанию цены, так что выбирается наибольшая цена дня.
	KeepLast DuplicatePolicy = iota
	// KeepFirst берет первое встреченное значение
	KeepFirst
)

// Cell ячейка выровненной таблицы; Valid=false означает явное отсутствие значения
type Cell struct {
	Value float64 `json:"v"`
	Valid bool    `json:"ok"`
}

// AlignedFrame таблица с одной строкой на дату наблюдения и одной колонкой на ряд:
// товары в каноническом порядке, затем инфляция
type AlignedFrame struct {
	RegionID int         `json:"region_id"`
	Dates    []time.Time `json:"dates"`
	Columns  []string    `json:"columns"`
	Cells    [][]Cell    `json:"cells"`
}

// AlignOptions параметры выравнивания рядов
type AlignOptions struct {
	RegionID     int
	CommodityIDs []int
	Duplicates   DuplicatePolicy
}

// DefaultAlignOptions возвращает параметры для региона с каноническим набором товаров
func DefaultAlignOptions(regionID int) AlignOptions {
	return AlignOptions{
		RegionID:     regionID,
		CommodityIDs: models.CanonicalCommodityIDs(),
		Duplicates:   KeepLast,
	}
}

type seriesKey struct {
	day    int64
	series int
}

// inflationSeries служебный идентификатор ряда инфляции в индексе
const inflationSeries = -1

// dayKey приводит дату к календарному дню, чтобы время суток не влияло на сопоставление
func dayKey(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

// Align объединяет наблюдения цен и инфляции в одну таблицу, индексированную по дате.
// Даты берутся только из наблюдений цен; значения инфляции на прочие даты отбрасываются.
func Align(prices []models.PriceObservation, inflation []models.InflationObservation, opts AlignOptions) (*AlignedFrame, error) {
	const op = "pipeline.Align"

	if len(opts.CommodityIDs) == 0 {
		opts.CommodityIDs = models.CanonicalCommodityIDs()
	}

	tracked := make(map[int]bool, len(opts.CommodityIDs))
	for _, id := range opts.CommodityIDs {
		tracked[id] = true
	}

	// 1. Индексируем цены отслеживаемых товаров и собираем множество дат
	index := make(map[seriesKey]float64)
	dates := make(map[int64]time.Time)
	for _, p := range prices {
		if !tracked[p.CommodityID] {
			continue
		}
		key := seriesKey{day: dayKey(p.Date), series: p.CommodityID}
		if _, seen := index[key]; seen && opts.Duplicates == KeepFirst {
			continue
		}
		index[key] = p.Price
		if _, ok := dates[key.day]; !ok {
			dates[key.day] = p.Date
		}
	}

	if len(dates) == 0 {
		return nil, models.NoData(op, "нет цен для daerah_id %d и komoditas_id %v", opts.RegionID, opts.CommodityIDs)
	}
	if len(inflation) == 0 {
		return nil, models.NoData(op, "нет данных инфляции для daerah_id %d", opts.RegionID)
	}

	// 2. Индексируем инфляцию только на датах, присутствующих в ценах
	for _, obs := range inflation {
		day := dayKey(obs.Date)
		if _, ok := dates[day]; !ok {
			continue
		}
		key := seriesKey{day: day, series: inflationSeries}
		if _, seen := index[key]; seen && opts.Duplicates == KeepFirst {
			continue
		}
		index[key] = obs.Rate
	}

	// 3. Сортируем даты по возрастанию
	days := make([]int64, 0, len(dates))
	for day := range dates {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	// 4. Заполняем строки: отсутствующие значения остаются явно пустыми
	series := append(append([]int{}, opts.CommodityIDs...), inflationSeries)
	frame := &AlignedFrame{
		RegionID: opts.RegionID,
		Dates:    make([]time.Time, len(days)),
		Columns:  columnNames(opts.CommodityIDs),
		Cells:    make([][]Cell, len(days)),
	}
	for i, day := range days {
		frame.Dates[i] = dates[day]
		row := make([]Cell, len(series))
		for j, s := range series {
			if v, ok := index[seriesKey{day: day, series: s}]; ok {
				row[j] = Cell{Value: v, Valid: true}
			}
		}
		frame.Cells[i] = row
	}

	return frame, nil
}

// columnNames возвращает названия колонок для набора товаров и колонки инфляции
func columnNames(commodityIDs []int) []string {
	known := models.CommodityColumnNames()
	names := make([]string, 0, len(commodityIDs)+1)
	for _, id := range commodityIDs {
		if id >= 1 && id <= len(known) {
			names = append(names, known[id-1])
		} else {
			names = append(names, "komoditas_"+strconv.Itoa(id))
		}
	}
	return append(names, models.InflationColumnName)
}

// Rows возвращает количество строк таблицы
func (f *AlignedFrame) Rows() int {
	return len(f.Cells)
}

// Width возвращает количество колонок таблицы
func (f *AlignedFrame) Width() int {
	return len(f.Columns)
}

// InflationColumn возвращает индекс колонки инфляции
func (f *AlignedFrame) InflationColumn() int {
	return len(f.Columns) - 1
}

// Matrix возвращает значения выбранных колонок в виде матрицы; отсутствующие значения равны NaN
func (f *AlignedFrame) Matrix(columns ...int) *mat.Dense {
	if len(columns) == 0 {
		columns = make([]int, f.Width())
		for j := range columns {
			columns[j] = j
		}
	}
	if f.Rows() == 0 || len(columns) == 0 {
		return nil
	}

	m := mat.NewDense(f.Rows(), len(columns), nil)
	for i, row := range f.Cells {
		for j, col := range columns {
			cell := row[col]
			if cell.Valid {
				m.Set(i, j, cell.Value)
			} else {
				m.Set(i, j, math.NaN())
			}
		}
	}
	return m
}

// CommodityMatrix возвращает матрицу цен товаров (все колонки кроме инфляции)
func (f *AlignedFrame) CommodityMatrix() *mat.Dense {
	cols := make([]int, f.InflationColumn())
	if len(cols) == 0 {
		return nil
	}
	for j := range cols {
		cols[j] = j
	}
	return f.Matrix(cols...)
}

// InflationMatrix возвращает колонку инфляции в виде матрицы N×1
func (f *AlignedFrame) InflationMatrix() *mat.Dense {
	return f.Matrix(f.InflationColumn())
}
