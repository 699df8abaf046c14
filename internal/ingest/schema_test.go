package ingest

import (
	"testing"

	"github.com/quantfeed/ohlcv-ingest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SchemaTestSuite struct {
	suite.Suite
}

func TestSchemaSuite(t *testing.T) {
	suite.Run(t, new(SchemaTestSuite))
}

func (suite *SchemaTestSuite) TestDetectSplitSchema() {
	schema, err := DetectSchema([]string{"Date", "Time", "Open", "High", "Low", "Close", "Volume"})
	suite.NoError(err)
	suite.Equal(SchemaSplit, schema)
}

func (suite *SchemaTestSuite) TestDetectCombinedSchema() {
	schema, err := DetectSchema([]string{"Datetime", "Open", "High", "Low", "Close", "Volume"})
	suite.NoError(err)
	suite.Equal(SchemaCombined, schema)
}

func (suite *SchemaTestSuite) TestDetectSchemaTrimsFields() {
	schema, err := DetectSchema([]string{" Date", "Time ", "Open", "High", "Low", "Close", "Volume"})
	suite.NoError(err)
	suite.Equal(SchemaSplit, schema)
}

func (suite *SchemaTestSuite) TestDetectSchemaIsOrderSensitive() {
	_, err := DetectSchema([]string{"Time", "Date", "Open", "High", "Low", "Close", "Volume"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSchemaMismatch))
}

func (suite *SchemaTestSuite) TestDetectSchemaIsCaseSensitive() {
	_, err := DetectSchema([]string{"date", "time", "open", "high", "low", "close", "volume"})
	suite.Error(err)
}

func (suite *SchemaTestSuite) TestDetectHeaderSchemaIgnoresCase() {
	schema, err := detectHeaderSchema([]string{"date", "time", "open", "high", "low", "close", "volume"})
	suite.NoError(err)
	suite.Equal(SchemaSplit, schema)

	schema, err = detectHeaderSchema([]string{"DATETIME", "Open", "High", "Low", "Close", "Volume"})
	suite.NoError(err)
	suite.Equal(SchemaCombined, schema)
}

func (suite *SchemaTestSuite) TestDetectHeaderSchemaRejectsWrongColumns() {
	_, err := detectHeaderSchema([]string{"date", "open", "high", "low", "close", "volume"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSchemaMismatch))
}

func (suite *SchemaTestSuite) TestDetectSchemaMissingColumn() {
	_, err := DetectSchema([]string{"Date", "Time", "Open", "High", "Low", "Close"})
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSchemaMismatch))
}

func (suite *SchemaTestSuite) TestInferSchemaFromFieldCount() {
	schema, err := InferSchema(make([]string, 7))
	suite.NoError(err)
	suite.Equal(SchemaSplit, schema)

	schema, err = InferSchema(make([]string, 6))
	suite.NoError(err)
	suite.Equal(SchemaCombined, schema)
}

func (suite *SchemaTestSuite) TestInferSchemaRejectsOtherCounts() {
	for _, count := range []int{0, 1, 5, 8} {
		_, err := InferSchema(make([]string, count))
		suite.Error(err)
	}
}

func (suite *SchemaTestSuite) TestColumns() {
	suite.Equal([]string{"Date", "Time", "Open", "High", "Low", "Close", "Volume"}, SchemaSplit.Columns())
	suite.Equal([]string{"Datetime", "Open", "High", "Low", "Close", "Volume"}, SchemaCombined.Columns())
	suite.Nil(Schema("bogus").Columns())
}

func (suite *SchemaTestSuite) TestNumFields() {
	suite.Equal(7, SchemaSplit.NumFields())
	suite.Equal(6, SchemaCombined.NumFields())
}

func (suite *SchemaTestSuite) TestValid() {
	suite.True(SchemaSplit.Valid())
	suite.True(SchemaCombined.Valid())
	suite.False(Schema("").Valid())
	suite.False(Schema("bogus").Valid())
}

func (suite *SchemaTestSuite) TestIsHeaderRow() {
	suite.True(IsHeaderRow([]string{"Date", "Time"}))
	suite.True(IsHeaderRow([]string{"datetime", "open"}))
	suite.True(IsHeaderRow([]string{"DATE"}))
	suite.False(IsHeaderRow([]string{"2025-09-19", "09:30:00"}))
	suite.False(IsHeaderRow(nil))
}
