package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func TestNumeric_ColumnTypePerDialect(t *testing.T) {
	field := &schema.Field{Precision: 20, Scale: 8}

	sqliteDB := &gorm.DB{Config: &gorm.Config{Dialector: sqlite.Open(":memory:")}}
	assert.Equal(t, "text", Numeric{}.GormDBDataType(sqliteDB, field))
	assert.Equal(t, "text", NullNumeric{}.GormDBDataType(sqliteDB, field))

	pgDB := &gorm.DB{Config: &gorm.Config{Dialector: postgres.New(postgres.Config{})}}
	assert.Equal(t, "numeric(20,8)", Numeric{}.GormDBDataType(pgDB, field))
	assert.Equal(t, "numeric(5,2)", NullNumeric{}.GormDBDataType(pgDB, &schema.Field{Precision: 5, Scale: 2}))
	assert.Equal(t, "numeric", Numeric{}.GormDBDataType(pgDB, &schema.Field{}))
}

func TestNumeric_JSON(t *testing.T) {
	var in struct {
		Pnl  Numeric     `json:"pnl"`
		Stop NullNumeric `json:"stop"`
		Take NullNumeric `json:"take"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"pnl": 18.5, "stop": "17990.25", "take": null}`), &in))

	assert.True(t, in.Pnl.Equal(d("18.5")))
	require.True(t, in.Stop.Valid)
	assert.True(t, in.Stop.Decimal.Equal(d("17990.25")))
	assert.False(t, in.Take.Valid)

	out, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pnl":"18.5","stop":"17990.25","take":null}`, string(out))
}

func TestNumeric_Rounded(t *testing.T) {
	assert.Equal(t, "0.12345679", NewNumeric(d("0.123456789")).Rounded().String())
	assert.False(t, NullNumeric{}.Rounded().Valid)
	assert.Equal(t, "2", NewNullNumeric(d("1.999999999")).Rounded().Decimal.String())
}
