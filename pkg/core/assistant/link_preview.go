package assistant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/LENAX/quant-board/pkg/core/cache"
)

// previewTTL 预览结果缓存时长
const previewTTL = 1 * time.Hour

// LinkPreview 链接预览卡片（对外导出）
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	SiteName    string `json:"site_name,omitempty"`
}

// Previewer 链接预览抓取器（对外导出）
// 抓取页面并抽取title/description/og标签；结果按URL缓存
type Previewer struct {
	httpClient *http.Client
	cache      cache.Cache
}

// NewPreviewer 创建链接预览抓取器（对外导出）
func NewPreviewer(c cache.Cache) *Previewer {
	return &Previewer{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: c,
	}
}

// Preview 抓取链接预览（对外导出）
func (p *Previewer) Preview(ctx context.Context, rawURL string) (*LinkPreview, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("URL无效: %s", rawURL)
	}

	if p.cache != nil {
		if v, ok := p.cache.Get(rawURL); ok {
			if preview, ok := v.(*LinkPreview); ok {
				return preview, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", "quant-board-preview/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("抓取页面失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("页面返回异常状态: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析页面失败: %w", err)
	}

	preview := extract(doc, rawURL)

	if p.cache != nil {
		p.cache.Set(rawURL, preview, previewTTL)
	}
	return preview, nil
}

// extract 从文档抽取预览字段，og标签优先
func extract(doc *goquery.Document, rawURL string) *LinkPreview {
	preview := &LinkPreview{URL: rawURL}

	metaContent := func(selector string) string {
		content, _ := doc.Find(selector).First().Attr("content")
		return strings.TrimSpace(content)
	}

	preview.Title = metaContent(`meta[property="og:title"]`)
	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	preview.Description = metaContent(`meta[property="og:description"]`)
	if preview.Description == "" {
		preview.Description = metaContent(`meta[name="description"]`)
	}

	preview.Image = metaContent(`meta[property="og:image"]`)
	preview.SiteName = metaContent(`meta[property="og:site_name"]`)

	return preview
}
