package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Run("semicolon file with header", func(t *testing.T) {
		cfg, err := Detect("Data;Valor;Descricao\r\n15/03/2024;-10,00;PADARIA\r\n\r\n")
		require.NoError(t, err)
		assert.Equal(t, ';', cfg.Delimiter)
		assert.True(t, cfg.HasHeader)
		assert.Equal(t, []string{"Data", "Valor", "Descricao"}, cfg.Headers)
		assert.False(t, cfg.RichExport)
		assert.Len(t, cfg.Lines, 2)
	})

	t.Run("comma file without header", func(t *testing.T) {
		cfg, err := Detect("15/03/2024,-45,90,id1,PADARIA CENTRAL")
		require.NoError(t, err)
		assert.Equal(t, ',', cfg.Delimiter)
		assert.False(t, cfg.HasHeader)
		assert.Empty(t, cfg.Headers)
	})

	t.Run("rich export header", func(t *testing.T) {
		cfg, err := Detect("Data,Valor,Descrição,Categoria,FormaPagamento,Destinatário,Parcelas,Origem,ID\n\"15/03/2024\",\"-1\",\"x\",\"y\",\"\",\"\",\"\",\"a.csv\",\"id\"")
		require.NoError(t, err)
		assert.True(t, cfg.HasHeader)
		assert.True(t, cfg.RichExport)
	})

	t.Run("bom stripped", func(t *testing.T) {
		cfg, err := Detect("\uFEFFdata;valor\n01/01/2024;1")
		require.NoError(t, err)
		assert.Equal(t, "data;valor", cfg.Lines[0])
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Detect(" \n\r\n  ")
		assert.ErrorIs(t, err, ErrEmptyFile)
	})
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("DATA,VALOR,IDENTIFICADOR,DESCRIÇÃO"))
	assert.True(t, IsHeader("descricao;montante"))
	assert.False(t, IsHeader("15/03/2024;-10;PADARIA"))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', DetectDelimiter("a;b,c"))
	assert.Equal(t, ',', DetectDelimiter("a,b"))
	assert.Equal(t, ',', DetectDelimiter("single"))
}

func TestSplitRow(t *testing.T) {
	assert.Equal(t, []string{"15/03/2024", "-45.90", "id1", "PADARIA, CENTRAL"},
		SplitRow(`"15/03/2024","-45.90","id1","PADARIA, CENTRAL"`, ','))
	assert.Equal(t, []string{"a", "b \"c\"", "d"},
		SplitRow(`a,"b ""c""",d`, ','))
	assert.Equal(t, []string{"a", "b", ""}, SplitRow(" a ; b ;", ';'))
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint([]string{"Descrição ", "VALOR"}), Fingerprint([]string{"descrição", "valor"}))
	assert.NotEqual(t, Fingerprint([]string{"data"}), Fingerprint([]string{"valor"}))
}
