package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ParseTestSuite struct {
	suite.Suite
}

func TestParseSuite(t *testing.T) {
	suite.Run(t, new(ParseTestSuite))
}

func (suite *ParseTestSuite) TestParseSplitRow() {
	line := "2025-09-19,09:30:00,4500.25,4502.00,4498.50,4501.75,1234"
	fields := strings.Split(line, ",")

	data, err := ParseRow(SchemaSplit, fields, 1, nil, false)
	suite.Require().NoError(err)

	suite.Equal(time.Date(2025, 9, 19, 9, 30, 0, 0, time.UTC), data.Time)
	suite.Equal("4500.25", data.Open.String())
	suite.Equal("4502.00", data.High.String())
	suite.Equal("4498.50", data.Low.String())
	suite.Equal("4501.75", data.Close.String())
	suite.Equal(int64(1234), data.Volume)
}

func (suite *ParseTestSuite) TestParseCombinedRow() {
	line := "2025-09-19 09:31:00,4501.75,4503.00,4499.25,4500.50,987"
	fields := strings.Split(line, ",")

	data, err := ParseRow(SchemaCombined, fields, 1, nil, false)
	suite.Require().NoError(err)

	suite.Equal(time.Date(2025, 9, 19, 9, 31, 0, 0, time.UTC), data.Time)
	suite.Equal("4501.75", data.Open.String())
	suite.Equal("4503.00", data.High.String())
	suite.Equal("4499.25", data.Low.String())
	suite.Equal("4500.50", data.Close.String())
	suite.Equal(int64(987), data.Volume)
}

func (suite *ParseTestSuite) TestSplitRowRoundTrip() {
	line := "2025-09-19,09:30:00,4500.25,4502.00,4498.50,4501.75,1234"

	data, err := ParseRow(SchemaSplit, strings.Split(line, ","), 1, nil, false)
	suite.Require().NoError(err)
	suite.Equal(line, FormatLine(SchemaSplit, data))
}

func (suite *ParseTestSuite) TestCombinedRowRoundTrip() {
	line := "2025-09-19 09:31:00,4501.75,4503.00,4499.25,4500.50,987"

	data, err := ParseRow(SchemaCombined, strings.Split(line, ","), 1, nil, false)
	suite.Require().NoError(err)
	suite.Equal(line, FormatLine(SchemaCombined, data))
}

func (suite *ParseTestSuite) TestCrossSchemaSerialization() {
	// A record parsed under one variant serializes cleanly under the other.
	line := "2025-09-19,09:30:00,4500.25,4502.00,4498.50,4501.75,1234"

	data, err := ParseRow(SchemaSplit, strings.Split(line, ","), 1, nil, false)
	suite.Require().NoError(err)
	suite.Equal("2025-09-19 09:30:00,4500.25,4502.00,4498.50,4501.75,1234",
		FormatLine(SchemaCombined, data))
}

func (suite *ParseTestSuite) TestWrongFieldCount() {
	fields := strings.Split("2025-09-19,09:30:00,4500.25", ",")

	_, err := ParseRow(SchemaSplit, fields, 7, nil, false)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeWrongFieldCount))

	var rowErr *errors.RowError
	suite.Require().True(errors.As(err, &rowErr))
	suite.Equal(7, rowErr.Line)
}

func (suite *ParseTestSuite) TestNonNumericPrice() {
	fields := strings.Split("2025-09-19,09:30:00,abc,4502.00,4498.50,4501.75,1234", ",")

	_, err := ParseRow(SchemaSplit, fields, 3, nil, false)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBadPrice))

	var rowErr *errors.RowError
	suite.Require().True(errors.As(err, &rowErr))
	suite.Equal("Open", rowErr.Field)
	suite.Equal(3, rowErr.Line)
}

func (suite *ParseTestSuite) TestNonIntegerVolume() {
	fields := strings.Split("2025-09-19,09:30:00,4500.25,4502.00,4498.50,4501.75,12.5", ",")

	_, err := ParseRow(SchemaSplit, fields, 2, nil, false)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBadVolume))
}

func (suite *ParseTestSuite) TestNegativeVolume() {
	fields := strings.Split("2025-09-19 09:31:00,4501.75,4503.00,4499.25,4500.50,-5", ",")

	_, err := ParseRow(SchemaCombined, fields, 2, nil, false)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBadVolume))
}

func (suite *ParseTestSuite) TestBadTimestamp() {
	fields := strings.Split("not-a-date,09:30:00,4500.25,4502.00,4498.50,4501.75,1234", ",")

	_, err := ParseRow(SchemaSplit, fields, 5, nil, false)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBadTimestamp))

	var rowErr *errors.RowError
	suite.Require().True(errors.As(err, &rowErr))
	suite.Equal("Date", rowErr.Field)
}

func (suite *ParseTestSuite) TestFallbackLayouts() {
	cases := []struct {
		schema Schema
		row    string
		want   time.Time
	}{
		{SchemaSplit, "2025/09/19,09:30,4500.25,4502.00,4498.50,4501.75,1234",
			time.Date(2025, 9, 19, 9, 30, 0, 0, time.UTC)},
		{SchemaSplit, "09/19/2025,09:30:00,4500.25,4502.00,4498.50,4501.75,1234",
			time.Date(2025, 9, 19, 9, 30, 0, 0, time.UTC)},
		{SchemaCombined, "2025-09-19T09:31:00,4501.75,4503.00,4499.25,4500.50,987",
			time.Date(2025, 9, 19, 9, 31, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		data, err := ParseRow(tc.schema, strings.Split(tc.row, ","), 1, nil, false)
		suite.Require().NoError(err, tc.row)
		suite.Equal(tc.want, data.Time, tc.row)
	}
}

func (suite *ParseTestSuite) TestStrictModeRejectsFallbackLayouts() {
	fields := strings.Split("2025/09/19,09:30:00,4500.25,4502.00,4498.50,4501.75,1234", ",")

	_, err := ParseRow(SchemaSplit, fields, 1, nil, true)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeBadTimestamp))
}

func (suite *ParseTestSuite) TestThousandsSeparators() {
	// Quoted fields can carry thousands separators; they are stripped
	// before numeric parsing.
	fields := []string{"2025-09-19", "09:30:00", "4,500.25", "4,502.00", "4,498.50", "4,501.75", "1,234"}

	data, err := ParseRow(SchemaSplit, fields, 1, nil, false)
	suite.Require().NoError(err)
	suite.Equal("4500.25", data.Open.String())
	suite.Equal(int64(1234), data.Volume)
}

func (suite *ParseTestSuite) TestParseInLocation() {
	loc, err := time.LoadLocation("America/New_York")
	suite.Require().NoError(err)

	fields := strings.Split("2025-09-19,09:30:00,4500.25,4502.00,4498.50,4501.75,1234", ",")

	data, err := ParseRow(SchemaSplit, fields, 1, loc, false)
	suite.Require().NoError(err)
	suite.Equal(time.Date(2025, 9, 19, 9, 30, 0, 0, loc), data.Time)
}

func (suite *ParseTestSuite) TestFormatRowUnknownSchema() {
	data, err := ParseRow(SchemaCombined,
		strings.Split("2025-09-19 09:31:00,4501.75,4503.00,4499.25,4500.50,987", ","), 1, nil, false)
	suite.Require().NoError(err)
	suite.Nil(FormatRow(Schema("bogus"), data))
}
