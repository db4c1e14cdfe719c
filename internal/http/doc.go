// Package http exposes the donation page API consumed by the page editor.
//
// Routes mount under /api/v1 by default:
//   - Pages: GET /pages, GET /pages/{id}, PATCH /pages/{id} (multipart), DELETE /pages/{id}
//   - Styles: GET /styles?revenue_program={id}, POST /styles, GET /styles/{id}, PATCH /styles/{id}
//
// Page updates use the multipart encoding produced by the requestbody
// package. Validation failures respond with 400 and a per-field message map.
package http
