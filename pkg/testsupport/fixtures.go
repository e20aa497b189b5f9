package testsupport

import (
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-blog-api/internal/model"
)

//go:embed testdata/blog.json
var blogFixture []byte

// FixtureUser is a seeded user together with its plain text password.
type FixtureUser struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BlogFixture is the data set inserted by SeedBlog.
type BlogFixture struct {
	Users    []FixtureUser   `json:"users"`
	Posts    []model.Post    `json:"posts"`
	Comments []model.Comment `json:"comments"`
}

// PostsOf returns the fixture posts written by userID.
func (f BlogFixture) PostsOf(userID int64) []model.Post {
	var posts []model.Post
	for _, p := range f.Posts {
		if p.UserID == userID {
			posts = append(posts, p)
		}
	}
	return posts
}

// Blog decodes the embedded blog fixture.
func Blog(t testing.TB) BlogFixture {
	t.Helper()

	var fixture BlogFixture
	if err := json.Unmarshal(blogFixture, &fixture); err != nil {
		t.Fatalf("failed to unmarshal blog fixture: %v", err)
	}
	return fixture
}

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// JSONBody marshals v into a reader, for request bodies.
func JSONBody(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	return strings.NewReader(string(data))
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}
