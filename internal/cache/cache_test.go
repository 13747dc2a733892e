package cache

import "testing"

func TestCacheSetGet(t *testing.T) {
	c := New()

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("https://a.com/x", "<html>body</html>")
	body, ok := c.Get("https://a.com/x")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if body != "<html>body</html>" {
		t.Errorf("got %q", body)
	}

	// Empty bodies are cached too, so failed parses are not refetched.
	c.Set("https://a.com/empty", "")
	if _, ok := c.Get("https://a.com/empty"); !ok {
		t.Error("expected hit for cached empty body")
	}

	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestCacheOverwrite(t *testing.T) {
	c := New()
	c.Set("k", "old")
	c.Set("k", "new")

	body, _ := c.Get("k")
	if body != "new" {
		t.Errorf("got %q, want overwritten value", body)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}
