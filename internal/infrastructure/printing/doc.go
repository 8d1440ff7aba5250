// Package printing renders sale receipts and repair tickets: html/template
// documents with locale-aware money formatting, printed to PDF through a
// headless Chrome driven by chromedp.
package printing
