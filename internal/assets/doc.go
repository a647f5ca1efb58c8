// Package assets provides the stylesheet, document template and upload page
// used by the converter and the HTTP server.
//
// Assets are embedded at compile time. A directory on disk may shadow any of
// them by name:
//
//	{dir}/
//	├── styles/
//	│   └── {name}.css       # e.g. default.css
//	├── templates/
//	│   └── {name}.html      # e.g. document.html
//	└── web/
//	    └── index.html       # upload page
//
// Asset names are validated so callers cannot escape those directories.
package assets
