package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fixtureHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head><title>Minha redação sobre educação</title></head>
<body>
<article>
<h1>Minha redação sobre educação</h1>
<p>A educação é a base de qualquer sociedade que pretende se desenvolver de forma
justa e sustentável. No Brasil, os desafios são muitos, mas as oportunidades de
transformação também.</p>
<p>É fundamental que o poder público invista em escolas, professores e
infraestrutura, garantindo o acesso universal ao ensino de qualidade.</p>
</article>
</body>
</html>`

func TestFetchText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	article, err := FetchText(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if article.Title != "Minha redação sobre educação" {
		t.Errorf("Title = %q", article.Title)
	}
	if !strings.Contains(article.Text, "A educação é a base") {
		t.Errorf("Text missing first paragraph: %q", article.Text)
	}
	if !strings.Contains(article.Text, "acesso universal") {
		t.Errorf("Text missing second paragraph: %q", article.Text)
	}
	if strings.Contains(article.Text, "<p>") {
		t.Errorf("Text still contains markup: %q", article.Text)
	}
}

func TestFetchTextSendsBrowserHeaders(t *testing.T) {
	var ua, lang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		lang = r.Header.Get("Accept-Language")
		w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	if _, err := FetchText(context.Background(), srv.URL); err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}
	if !strings.Contains(ua, "Mozilla/5.0") {
		t.Errorf("User-Agent = %q", ua)
	}
	if !strings.HasPrefix(lang, "pt-BR") {
		t.Errorf("Accept-Language = %q", lang)
	}
}

func TestFetchTextNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := FetchText(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestFetchTextEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer srv.Close()

	if _, err := FetchText(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for page without readable text")
	}
}

func TestFetchTextContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := FetchText(ctx, srv.URL); err == nil {
		t.Fatal("expected context deadline error")
	}
}
