package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	"trainingload/internal/analysis"
)

func testMetrics() []analysis.DailyMetrics {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return analysis.CalculateTrainingLoad([]analysis.TrainingSession{
		{Date: day, TSS: 80},
		{Date: day.AddDate(0, 0, 2), TSS: 120},
	}, day.AddDate(0, 0, 4))
}

func floatPtr(f float64) *float64 { return &f }

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"Parquet", FormatParquet, false},
		{"json", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestWriteDailyMetricsCSV(t *testing.T) {
	metrics := testMetrics()

	var buf bytes.Buffer
	if err := WriteDailyMetricsCSV(&buf, metrics); err != nil {
		t.Fatalf("WriteDailyMetricsCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != len(metrics)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(metrics)+1)
	}
	if strings.Join(rows[0], ",") != "date,tss,ctl,atl,tsb,acwr" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2024-01-01" || rows[1][1] != "80" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][1] != "0" {
		t.Errorf("rest day TSS = %q, want 0", rows[2][1])
	}
}

func TestWriteSessionsCSV(t *testing.T) {
	np := 240
	sessions := []analysis.TrainingSession{
		{
			ID: "a", Name: "Tempo, hard", Sport: analysis.SportCycling,
			Date: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), TSS: 95.5,
			StressMethod: analysis.StressPowerBased, NormalizedPower: &np, AvgHeartRate: floatPtr(150),
		},
		{ID: "b", Name: "Easy", Sport: analysis.SportRunning, StressMethod: analysis.StressDuration},
	}

	var buf bytes.Buffer
	if err := WriteSessionsCSV(&buf, sessions); err != nil {
		t.Fatalf("WriteSessionsCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[1][1] != "Tempo, hard" || rows[1][3] != "2024-01-01T08:00:00Z" || rows[1][8] != "240" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][8] != "" || rows[2][10] != "" {
		t.Errorf("missing values should be empty: %v", rows[2])
	}
}

func TestMarshalDailyMetricsParquet(t *testing.T) {
	metrics := testMetrics()

	data, err := MarshalDailyMetricsParquet(metrics)
	if err != nil {
		t.Fatalf("MarshalDailyMetricsParquet: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PAR1")) || !bytes.HasSuffix(data, []byte("PAR1")) {
		t.Fatal("output is not a parquet file")
	}

	pr, err := reader.NewParquetReader(parquetbuffer.NewBufferFileFromBytes(data), new(dailyMetricsRow), 1)
	if err != nil {
		t.Fatalf("NewParquetReader: %v", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n != len(metrics) {
		t.Fatalf("rows = %d, want %d", n, len(metrics))
	}
	rows := make([]dailyMetricsRow, n)
	if err := pr.Read(&rows); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if rows[0].Date != "2024-01-01" || rows[0].TSS != 80 || rows[n-1].CTL != metrics[n-1].CTL {
		t.Errorf("rows = %+v", rows)
	}
}

func TestMarshalSessionsParquet(t *testing.T) {
	sessions := []analysis.TrainingSession{
		{ID: "a", Sport: analysis.SportRunning, TSS: 50, StressMethod: analysis.StressHeartRateBased, AvgHeartRate: floatPtr(145)},
	}
	data, err := MarshalSessionsParquet(sessions)
	if err != nil {
		t.Fatalf("MarshalSessionsParquet: %v", err)
	}

	pr, err := reader.NewParquetReader(parquetbuffer.NewBufferFileFromBytes(data), new(sessionRow), 1)
	if err != nil {
		t.Fatalf("NewParquetReader: %v", err)
	}
	defer pr.ReadStop()

	if pr.GetNumRows() != 1 {
		t.Errorf("rows = %d, want 1", pr.GetNumRows())
	}
}
