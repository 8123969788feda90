// Package e2e exercises the full analyze pipeline against fixture repos.
package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// FixtureRepo is a small on-disk project with a known expected classification.
type FixtureRepo struct {
	Name          string
	ExpectedLabel string
	Files         map[string]string
}

// Fixtures returns one representative repo per supported project type.
func Fixtures() []FixtureRepo {
	return []FixtureRepo{
		{
			Name:          "flask-api",
			ExpectedLabel: "python-generic",
			Files: map[string]string{
				"requirements.txt": "flask\nsqlalchemy\n",
				"main.py": `import flask
from src import auth

app = flask.Flask(__name__)

@app.route("/login", methods=["POST"])
def login():
    return auth.verify_token(flask.request.json["token"])
`,
				"src/auth.py": `import jwt

SECRET = "change-me"

def verify_token(token):
    return jwt.decode(token, SECRET, algorithms=["HS256"])
`,
				"src/db.py": `import sqlalchemy

engine = sqlalchemy.create_engine("sqlite:///app.db")
`,
			},
		},
		{
			Name:          "storefront",
			ExpectedLabel: "next-js",
			Files: map[string]string{
				"package.json":   `{"name":"storefront","scripts":{"dev":"next dev","build":"next build","start":"next start"}}`,
				"next.config.js": "module.exports = {}\n",
				"app/layout.tsx": `export default function RootLayout({ children }) {
  return <html><body>{children}</body></html>
}
`,
				"app/page.tsx": `import { ProductList } from '../components/ProductList'

export default function Home() {
  return <ProductList />
}
`,
				"components/ProductList.tsx": `export function ProductList() {
  return <ul />
}
`,
			},
		},
		{
			Name:          "churn-model",
			ExpectedLabel: "ml-notebook",
			Files: map[string]string{
				"requirements.txt":      "pandas\nnumpy\nscikit-learn\nmatplotlib\n",
				"notebooks/train.ipynb": `{"cells":[],"metadata":{},"nbformat":4,"nbformat_minor":5}`,
				"notebooks/eval.ipynb":  `{"cells":[],"metadata":{},"nbformat":4,"nbformat_minor":5}`,
				"data/README.md":        "Place raw CSV exports here.\n",
			},
		},
	}
}

// Write materializes the fixture under a temp dir and returns its root.
func (f FixtureRepo) Write(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), f.Name)
	for rel, content := range f.Files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return root
}
