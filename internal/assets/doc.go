// Package assets provides the stylesheets injected into enhanced pages.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default style)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// Styles live under {basePath}/styles/{name}.css. Names are validated to
// keep lookups inside the styles directory, and FilesystemLoader resolves
// symlinks before checking containment.
package assets
