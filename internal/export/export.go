// Package export writes the training-load series and session summaries as CSV or Parquet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"trainingload/internal/analysis"
)

const dateLayout = "2006-01-02"

// Format selects the output encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat validates a user-supplied format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatParquet:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or parquet)", s)
}

func dailyMetricsHeader() []string {
	return []string{"date", "tss", "ctl", "atl", "tsb", "acwr"}
}

// WriteDailyMetricsCSV writes one row per day, oldest first
func WriteDailyMetricsCSV(w io.Writer, metrics []analysis.DailyMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dailyMetricsHeader()); err != nil {
		return err
	}
	for _, m := range metrics {
		row := []string{
			m.Date.Format(dateLayout),
			formatFloat(m.TSS),
			formatFloat(m.CTL),
			formatFloat(m.ATL),
			formatFloat(m.TSB),
			formatFloat(m.ACWR),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func sessionsHeader() []string {
	return []string{
		"id", "name", "sport", "start_time", "duration_s", "distance_m", "tss", "stress_method",
		"normalized_power", "intensity_factor", "avg_hr", "aerobic_effect", "anaerobic_effect",
	}
}

// WriteSessionsCSV writes one row per session. Missing values are left empty.
func WriteSessionsCSV(w io.Writer, sessions []analysis.TrainingSession) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sessionsHeader()); err != nil {
		return err
	}
	for _, s := range sessions {
		np := ""
		if s.NormalizedPower != nil {
			np = strconv.Itoa(*s.NormalizedPower)
		}
		row := []string{
			s.ID,
			s.Name,
			string(s.Sport),
			s.Date.UTC().Format("2006-01-02T15:04:05Z"),
			formatFloat(s.DurationSeconds),
			formatFloat(s.DistanceMeters),
			formatFloat(s.TSS),
			string(s.StressMethod),
			np,
			formatFloatPtr(s.IntensityFactor),
			formatFloatPtr(s.AvgHeartRate),
			formatFloatPtr(s.AerobicEffect),
			formatFloatPtr(s.AnaerobicEffect),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type dailyMetricsRow struct {
	Date string  `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	TSS  float64 `parquet:"name=tss, type=DOUBLE"`
	CTL  float64 `parquet:"name=ctl, type=DOUBLE"`
	ATL  float64 `parquet:"name=atl, type=DOUBLE"`
	TSB  float64 `parquet:"name=tsb, type=DOUBLE"`
	ACWR float64 `parquet:"name=acwr, type=DOUBLE"`
}

// MarshalDailyMetricsParquet encodes the load series as a Snappy-compressed Parquet file
func MarshalDailyMetricsParquet(metrics []analysis.DailyMetrics) ([]byte, error) {
	rows := make([]interface{}, len(metrics))
	for i, m := range metrics {
		rows[i] = dailyMetricsRow{
			Date: m.Date.Format(dateLayout),
			TSS:  m.TSS,
			CTL:  m.CTL,
			ATL:  m.ATL,
			TSB:  m.TSB,
			ACWR: m.ACWR,
		}
	}
	return marshalParquet(new(dailyMetricsRow), rows)
}

type sessionRow struct {
	ID              string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name            string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sport           string  `parquet:"name=sport, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StartTime       string  `parquet:"name=start_time, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationS       float64 `parquet:"name=duration_s, type=DOUBLE"`
	DistanceM       float64 `parquet:"name=distance_m, type=DOUBLE"`
	TSS             float64 `parquet:"name=tss, type=DOUBLE"`
	StressMethod    string  `parquet:"name=stress_method, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	NormalizedPower float64 `parquet:"name=normalized_power, type=DOUBLE"`
	IntensityFactor float64 `parquet:"name=intensity_factor, type=DOUBLE"`
	AvgHR           float64 `parquet:"name=avg_hr, type=DOUBLE"`
	AerobicEffect   float64 `parquet:"name=aerobic_effect, type=DOUBLE"`
	AnaerobicEffect float64 `parquet:"name=anaerobic_effect, type=DOUBLE"`
}

// MarshalSessionsParquet encodes session summaries; missing values become NaN
func MarshalSessionsParquet(sessions []analysis.TrainingSession) ([]byte, error) {
	rows := make([]interface{}, len(sessions))
	for i, s := range sessions {
		np := math.NaN()
		if s.NormalizedPower != nil {
			np = float64(*s.NormalizedPower)
		}
		rows[i] = sessionRow{
			ID:              s.ID,
			Name:            s.Name,
			Sport:           string(s.Sport),
			StartTime:       s.Date.UTC().Format("2006-01-02T15:04:05Z"),
			DurationS:       s.DurationSeconds,
			DistanceM:       s.DistanceMeters,
			TSS:             s.TSS,
			StressMethod:    string(s.StressMethod),
			NormalizedPower: np,
			IntensityFactor: valueOrNaN(s.IntensityFactor),
			AvgHR:           valueOrNaN(s.AvgHeartRate),
			AerobicEffect:   valueOrNaN(s.AerobicEffect),
			AnaerobicEffect: valueOrNaN(s.AnaerobicEffect),
		}
	}
	return marshalParquet(new(sessionRow), rows)
}

func marshalParquet(schema interface{}, rows []interface{}) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
