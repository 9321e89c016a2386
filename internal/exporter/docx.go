package exporter

import "github.com/markconv/markconv/internal/ooxml"

func renderDocx(body string) ([]byte, error) {
	return ooxml.WriteDocx(parseBlocks([]byte(body)))
}
