//
// Copyright (C) 2025 NETVEXA. All rights reserved.
//
// rag-go is licensed under the Apache License Version 2.0.
//
//

package parser

import (
	"path/filepath"
	"strings"
)

// languageByExtension maps source file extensions to language names.
var languageByExtension = map[string]string{
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".java":  "java",
	".cpp":   "cpp",
	".c":     "c",
	".cs":    "csharp",
	".php":   "php",
	".rb":    "ruby",
	".go":    "go",
	".rs":    "rust",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".r":     "r",
	".m":     "matlab",
	".sql":   "sql",
	".sh":    "bash",
	".ps1":   "powershell",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".xml":   "xml",
	".css":   "css",
	".scss":  "scss",
	".vue":   "vue",
	".jsx":   "jsx",
	".tsx":   "tsx",
}

// codeMIMETypes lists MIME types treated as source code.
var codeMIMETypes = map[string]bool{
	"text/x-python":          true,
	"text/x-java":            true,
	"text/x-c":               true,
	"text/x-go":              true,
	"text/x-sql":             true,
	"application/javascript": true,
	"application/json":       true,
	"application/xml":        true,
}

// LanguageForFile returns the source language for a file name, or
// "unknown" when the extension is not recognized.
func LanguageForFile(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if lang, ok := languageByExtension[ext]; ok {
		return lang
	}
	return "unknown"
}
