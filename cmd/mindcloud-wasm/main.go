//go:build js && wasm

// Command mindcloud-wasm is the browser viewer served at /app.wasm.
package main

import (
	"context"

	"github.com/recera/mindcloud/pkg/components/cloudview"
)

func main() {
	if _, err := cloudview.Mount(context.Background(), cloudview.Options{Waves: true}); err != nil {
		println("mindcloud:", err.Error())
		return
	}
	select {}
}
