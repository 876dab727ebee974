package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/quant-board/pkg/core/cache"
)

const previewHTML = `<!DOCTYPE html>
<html>
<head>
	<title>回退标题</title>
	<meta property="og:title" content="量化周报 第12期">
	<meta property="og:description" content="本周因子表现回顾">
	<meta property="og:image" content="https://example.com/cover.png">
	<meta property="og:site_name" content="量化研究站">
	<meta name="description" content="普通描述">
</head>
<body><p>正文</p></body>
</html>`

func TestPreviewExtractsOGTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(previewHTML))
	}))
	defer srv.Close()

	p := NewPreviewer(cache.NewMemoryCache())
	preview, err := p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "量化周报 第12期", preview.Title)
	assert.Equal(t, "本周因子表现回顾", preview.Description)
	assert.Equal(t, "https://example.com/cover.png", preview.Image)
	assert.Equal(t, "量化研究站", preview.SiteName)
}

func TestPreviewFallsBackToTitleTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>只有标题</title></head><body></body></html>`))
	}))
	defer srv.Close()

	p := NewPreviewer(nil)
	preview, err := p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "只有标题", preview.Title)
	assert.Empty(t, preview.Description)
}

func TestPreviewUsesCache(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(previewHTML))
	}))
	defer srv.Close()

	p := NewPreviewer(cache.NewMemoryCache())
	_, err := p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)
	_, err = p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load(), "第二次应命中缓存")
}

func TestPreviewRejectsBadURL(t *testing.T) {
	p := NewPreviewer(nil)

	_, err := p.Preview(context.Background(), "ftp://example.com")
	assert.Error(t, err)

	_, err = p.Preview(context.Background(), "::bad::")
	assert.Error(t, err)
}

func TestPreviewNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPreviewer(nil)
	_, err := p.Preview(context.Background(), srv.URL)
	assert.Error(t, err)
}
