package docs

import (
	"bufio"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("GetTopic(%q) unexpected error: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics() unexpected error: %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
	if _, err := GetTopic("unknown"); err == nil {
		t.Errorf("GetTopic(unknown): want an error")
	}
}

func TestGetTopic_All(t *testing.T) {
	got, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) unexpected error: %v", err)
	}
	for _, heading := range []string{"# News", "# Watchlist", "# Digest", "# Configuration", "# API"} {
		if !strings.Contains(got, heading) {
			t.Errorf("GetTopic(*) misses %q", heading)
		}
	}
	if strings.Contains(got, "# Signalist documentation") {
		t.Errorf("GetTopic(*) contains the readme")
	}
}

func TestLinks(t *testing.T) {
	// Relative links between topics must resolve.
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range append(all, "readme") {
		content, err := os.ReadFile(topic + ".md")
		if err != nil {
			t.Fatal(err)
		}
		root := goldmark.DefaultParser().Parse(text.NewReader(content))
		ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			link, ok := n.(*ast.Link)
			if !entering || !ok {
				return ast.WalkContinue, nil
			}
			dest := string(link.Destination)
			if strings.Contains(dest, "://") {
				return ast.WalkContinue, nil
			}
			target := strings.TrimSuffix(path.Base(dest), ".md")
			if !slices.Contains(all, target) {
				t.Errorf("%s.md: link to %q does not match any topic", topic, dest)
			}
			return ast.WalkContinue, nil
		})
	}
}
