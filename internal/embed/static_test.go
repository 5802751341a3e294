package embed

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticEmbedderDeterministic(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	a, err := e.Embed(context.Background(), "реклама лекарственных средств")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "реклама лекарственных средств")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStaticEmbedderUnitLength(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	vec, err := e.Embed(context.Background(), "банковская гарантия по вкладам")
	require.NoError(t, err)
	require.Len(t, vec, StaticDimensions)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
}

func TestStaticEmbedderEmptyText(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	vec, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	require.Len(t, vec, StaticDimensions)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestStaticEmbedderDistinguishesTexts(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	a, err := e.Embed(context.Background(), "реклама медицинских услуг")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "кредитный договор со страховкой")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStaticEmbedderQueryMatchesDocument(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	doc, err := e.Embed(context.Background(), "одно и то же")
	require.NoError(t, err)
	query, err := e.EmbedQuery(context.Background(), "одно и то же")
	require.NoError(t, err)

	assert.Equal(t, doc, query)
}

func TestStaticEmbedderBatch(t *testing.T) {
	e := NewStaticEmbedder()
	defer e.Close()

	vecs, err := e.EmbedBatch(context.Background(), []string{"один", "два"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestStaticEmbedderClosed(t *testing.T) {
	e := NewStaticEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "текст")
	assert.Error(t, err)
	assert.False(t, e.Available(context.Background()))
}
