package models

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Loaded  bool             `json:"loaded"`
	ID      string           `json:"id,omitempty"`
	Name    string           `json:"name,omitempty"`
	Rows    int              `json:"rows"`
	Columns []ColumnInfo     `json:"columns"`
	Preview []map[string]any `json:"preview"`
	// FilteredRows is set when a filtered view is active.
	FilteredRows *int `json:"filtered_rows,omitempty"`
}

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FilterOptions is what the filter widgets render.
type FilterOptions struct {
	DatasetID string                 `json:"dataset_id,omitempty"`
	Options   map[string][]string    `json:"options"`
	Bounds    map[string]RangeBounds `json:"bounds"`
}

type RangeBounds struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Adjustable bool    `json:"adjustable"`
}

type TimePoint struct {
	Label string  `json:"label"`
	Start string  `json:"start"`
	Value float64 `json:"value"`
}

type TimeSeries struct {
	Metric string      `json:"metric"`
	Period string      `json:"period"`
	Points []TimePoint `json:"points"`
}

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// Distribution is a pie chart. Measure is the summed column or "count".
type Distribution struct {
	Column  string  `json:"column"`
	Measure string  `json:"measure"`
	Slices  []Slice `json:"slices"`
}

type TopItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ConsumptionTrend is a per-vehicle line with an optional least-squares trend.
// Fallback is true when the consumption column is missing and Column holds
// the amount refueled instead.
type ConsumptionTrend struct {
	Vehicle  string       `json:"vehicle"`
	Column   string       `json:"column"`
	Fallback bool         `json:"fallback"`
	Points   []TrendPoint `json:"points"`
	Trend    []TrendPoint `json:"trend,omitempty"`
}

type Comparison struct {
	Vehicle   string      `json:"vehicle"`
	Model     string      `json:"model"`
	Metric    string      `json:"metric"`
	Series    []TimePoint `json:"series"`
	ModelMean []TimePoint `json:"model_mean"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MapPoint struct {
	LatLng
	Date    string   `json:"date,omitempty"`
	Address string   `json:"address,omitempty"`
	Amount  *float64 `json:"amount_refueled,omitempty"`
}

type RefuelMap struct {
	Vehicle string     `json:"vehicle"`
	Center  LatLng     `json:"center"`
	SW      LatLng     `json:"south_west"`
	NE      LatLng     `json:"north_east"`
	PathKm  float64    `json:"path_km"`
	Points  []MapPoint `json:"points"`
}
