package mongoclient

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
)

// MakeBsonM turns a struct of optional fields into a selector. Nil pointers and
// omitempty zero values are skipped, pointers are unpacked and non-empty
// slices become {"$in": slice}.
func MakeBsonM(patchable interface{}) (bson.M, error) {
	val := reflect.ValueOf(patchable)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	bsonM := bson.M{}
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)

		tag, err := bsoncodec.DefaultStructTagParser(val.Type().Field(i))
		if err != nil {
			return nil, err
		}
		if tag.Skip || !field.CanInterface() || field.IsZero() {
			continue
		}

		switch field.Kind() {
		case reflect.Ptr:
			bsonM[tag.Name] = field.Elem().Interface()
		case reflect.Slice:
			if field.Len() > 0 {
				bsonM[tag.Name] = bson.M{"$in": field.Interface()}
			}
		default:
			bsonM[tag.Name] = field.Interface()
		}
	}
	return bsonM, nil
}
