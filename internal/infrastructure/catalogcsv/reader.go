// Package catalogcsv lee exportaciones de catálogo en CSV (UTF-8 o ISO-8859-1).
//
// Columnas por nombre de cabecera, en cualquier orden:
// reference;name;brand;barcode;purchase_price;sale_price;stock;low_stock_threshold;description.
// reference y name son obligatorias. Separador ';' o ','.
package catalogcsv

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/biomed-stock/internal/application/dto"
)

// Encoding del archivo.
type Encoding string

const (
	EncodingAuto   Encoding = "auto" // UTF-8 si es válido, si no ISO-8859-1
	EncodingUTF8   Encoding = "utf8"
	EncodingLatin1 Encoding = "latin1"
)

// RowError fila rechazada (Line cuenta desde 1, incluida la cabecera).
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string { return fmt.Sprintf("fila %d: %v", e.Line, e.Err) }

var aliases = map[string]string{
	"referencia":    "reference",
	"ref":           "reference",
	"nombre":        "name",
	"designation":   "name",
	"marca":         "brand",
	"codigo_barras": "barcode",
	"precio_compra": "purchase_price",
	"prix_achat":    "purchase_price",
	"precio_venta":  "sale_price",
	"prix_vente":    "sale_price",
	"cantidad":      "stock",
	"quantite":      "stock",
	"stock_minimo":  "low_stock_threshold",
	"seuil_alerte":  "low_stock_threshold",
	"descripcion":   "description",
}

// Read convierte el CSV en solicitudes de alta. Las filas inválidas se devuelven en
// errs y no impiden leer las demás.
func Read(r io.Reader, enc Encoding) ([]dto.CreateProductRequest, []RowError, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("leer csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if enc == EncodingLatin1 || (enc == EncodingAuto && !utf8.Valid(raw)) {
		raw, _, err = transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decodificar ISO-8859-1: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectComma(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer cabecera: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if a, ok := aliases[name]; ok {
			name = a
		}
		cols[name] = i
	}
	if _, ok := cols["reference"]; !ok {
		return nil, nil, fmt.Errorf("cabecera sin columna reference")
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, fmt.Errorf("cabecera sin columna name")
	}

	var out []dto.CreateProductRequest
	var errs []RowError
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = append(errs, RowError{Line: line, Err: err})
			continue
		}
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("reference") == "" && get("name") == "" {
			continue
		}
		req, err := toRequest(get)
		if err != nil {
			errs = append(errs, RowError{Line: line, Err: err})
			continue
		}
		out = append(out, req)
	}
	return out, errs, nil
}

func toRequest(get func(string) string) (dto.CreateProductRequest, error) {
	req := dto.CreateProductRequest{
		Reference:   get("reference"),
		Name:        get("name"),
		Brand:       get("brand"),
		Barcode:     get("barcode"),
		Description: get("description"),
	}
	if req.Reference == "" || req.Name == "" {
		return req, fmt.Errorf("reference y name son obligatorios")
	}
	var err error
	if req.PurchasePrice, err = parseMoney(get("purchase_price")); err != nil {
		return req, fmt.Errorf("purchase_price: %w", err)
	}
	if req.SalePrice, err = parseMoney(get("sale_price")); err != nil {
		return req, fmt.Errorf("sale_price: %w", err)
	}
	if s := get("stock"); s != "" {
		if req.InitialStock, err = strconv.Atoi(s); err != nil || req.InitialStock < 0 {
			return req, fmt.Errorf("stock %q no es un entero positivo", s)
		}
	}
	if s := get("low_stock_threshold"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return req, fmt.Errorf("low_stock_threshold %q no es un entero positivo", s)
		}
		req.LowStockThreshold = &n
	}
	return req, nil
}

// parseMoney admite coma decimal y espacios de miles ("1 250,50").
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negativo")
	}
	return d, nil
}

func detectComma(raw []byte) rune {
	first := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		first = raw[:i]
	}
	if bytes.Count(first, []byte(";")) >= bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}
