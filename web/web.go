package web

import "embed"

//go:embed app.html
var AppPage []byte

//go:embed auth.html
var AuthPage []byte

// Assets chứa static/js cho hai trang, phục vụ tại /static
//
//go:embed static
var Assets embed.FS
