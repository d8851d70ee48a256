package dia

import (
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Mongify projects a canonical record onto a storage document: a
// key/value tree whose values are scalar primitives, byte buffers,
// nested documents, or arrays. The document is a bson.M, so the order
// of its keys is not preserved. Optional fields that are
// present are written under their storage name (the `bson` struct
// tag); absent optional fields are omitted entirely, never written as
// an explicit null. Numeric scalars keep the width they were declared
// with; nested collections preserve order.
func Mongify(v any) bson.M {
	if v == nil {
		return nil
	}
	if obj, ok := v.(DiaObject); ok {
		return mongifyObject(&obj)
	}
	if obj, ok := v.(*DiaObject); ok {
		return mongifyObject(obj)
	}
	return mongifyStruct(reflect.ValueOf(v))
}

// mongifyObject handles DiaObject's per-band aggregate fields, which
// the wire and storage schemas both name dynamically (e.g.
// "u_psfFluxMean") rather than through a fixed struct tag.
func mongifyObject(o *DiaObject) bson.M {
	doc := mongifyStruct(reflect.ValueOf(*o))
	for _, band := range Bands {
		agg := o.BandAggregate(band)
		putFloat32(doc, band+"_psfFluxMean", agg.PsfFluxMean)
		putFloat32(doc, band+"_psfFluxMeanErr", agg.PsfFluxMeanErr)
		putFloat32(doc, band+"_psfFluxChi2", agg.PsfFluxChi2)
		putInt32(doc, band+"_psfFluxNdata", agg.PsfFluxNdata)
		putFloat32(doc, band+"_psfFluxErrMean", agg.PsfFluxErrMean)
		putFloat32(doc, band+"_fpFluxMean", agg.FpFluxMean)
		putFloat32(doc, band+"_fpFluxMeanErr", agg.FpFluxMeanErr)
	}
	return doc
}

func putFloat32(doc bson.M, key string, v *float32) {
	if v != nil {
		doc[key] = *v
	}
}

func putInt32(doc bson.M, key string, v *int32) {
	if v != nil {
		doc[key] = *v
	}
}

// mongifyStruct walks a struct value's exported fields, using the
// `bson` struct tag to decide the storage key and whether the field is
// elided when absent.
func mongifyStruct(rv reflect.Value) bson.M {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	rt := rv.Type()
	doc := bson.M{}
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("bson")
		if tag == "-" {
			continue
		}
		name, omitempty := parseBSONTag(tag, field.Name)

		fv := rv.Field(i)
		val, present := mongifyValue(fv, omitempty)
		if !present {
			continue
		}
		doc[name] = val
	}
	return doc
}

func parseBSONTag(tag, fieldName string) (name string, omitempty bool) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fieldName
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty
}

// mongifyValue resolves one field's value for inclusion in a document.
// present is false when the field is an absent optional (a nil
// pointer or nil slice tagged omitempty), signaling the caller to
// elide the key entirely.
var diaObjectType = reflect.TypeOf(DiaObject{})

func mongifyValue(fv reflect.Value, omitempty bool) (any, bool) {
	if fv.Kind() == reflect.Struct && fv.Type() == diaObjectType {
		obj := fv.Interface().(DiaObject)
		return mongifyObject(&obj), true
	}

	switch fv.Kind() {
	case reflect.Pointer:
		if fv.IsNil() {
			return nil, false
		}
		return mongifyValue(fv.Elem(), false)
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte cutout buffers: preserve the nil/empty distinction.
			if fv.IsNil() {
				return nil, false
			}
			return bson.Binary{Subtype: 0x00, Data: fv.Bytes()}, true
		}
		if fv.IsNil() && omitempty {
			return nil, false
		}
		arr := bson.A{}
		for i := 0; i < fv.Len(); i++ {
			elem := fv.Index(i)
			if elem.Kind() == reflect.Struct {
				arr = append(arr, mongifyStruct(elem))
			} else {
				v, ok := mongifyValue(elem, false)
				if ok {
					arr = append(arr, v)
				}
			}
		}
		return arr, true
	case reflect.Struct:
		return mongifyStruct(fv), true
	default:
		return fv.Interface(), true
	}
}
