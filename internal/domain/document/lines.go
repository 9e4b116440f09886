// Package document reglas puras sobre documentos con líneas: lectura de los
// campos line_<índice>_<campo> de un formulario y numeración.
package document

import (
	"sort"
	"strconv"
	"strings"
)

// Campos reconocidos en line_<índice>_<campo>.
const (
	FieldProductID = "product_id"
	FieldQuantity  = "quantity"
	FieldUnitPrice = "unit_price"
	FieldDiscount  = "discount"

	linePrefix = "line_"
)

// LineFields valores crudos de una línea enviada. Los punteros nil indican campo ausente.
type LineFields struct {
	Index     int
	ProductID string
	Quantity  *string
	UnitPrice *string
	Discount  *string
}

// Blank línea vacía de un formulario dinámico: sin producto o con producto "0".
func (l LineFields) Blank() bool {
	id := strings.TrimSpace(l.ProductID)
	return id == "" || id == "0"
}

// ParseLineFields agrupa por índice las claves line_<índice>_<campo> y las
// devuelve en orden numérico ascendente. Ignora el resto de claves, los
// índices que no son enteros no negativos y los campos desconocidos.
func ParseLineFields(form map[string]string) []LineFields {
	byIndex := map[int]*LineFields{}
	for key, value := range form {
		if !strings.HasPrefix(key, linePrefix) {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(key, linePrefix), "_", 2)
		if len(parts) != 2 {
			continue
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil || idx < 0 || parts[0] != strconv.Itoa(idx) {
			continue
		}
		lf, ok := byIndex[idx]
		if !ok {
			lf = &LineFields{Index: idx}
			byIndex[idx] = lf
		}
		v := value
		switch parts[1] {
		case FieldProductID:
			lf.ProductID = strings.TrimSpace(v)
		case FieldQuantity:
			lf.Quantity = &v
		case FieldUnitPrice:
			lf.UnitPrice = &v
		case FieldDiscount:
			lf.Discount = &v
		}
	}

	out := make([]LineFields, 0, len(byIndex))
	for _, lf := range byIndex {
		out = append(out, *lf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// FormValues inversa de ParseLineFields: genera las claves del formulario
// para volver a mostrar o reenviar líneas.
func FormValues(lines []LineFields) map[string]string {
	out := make(map[string]string, len(lines)*4)
	for _, l := range lines {
		prefix := linePrefix + strconv.Itoa(l.Index) + "_"
		out[prefix+FieldProductID] = l.ProductID
		if l.Quantity != nil {
			out[prefix+FieldQuantity] = *l.Quantity
		}
		if l.UnitPrice != nil {
			out[prefix+FieldUnitPrice] = *l.UnitPrice
		}
		if l.Discount != nil {
			out[prefix+FieldDiscount] = *l.Discount
		}
	}
	return out
}
