package validators

import "go.mongodb.org/mongo-driver/bson"

var CommentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"item_id",
			"author_id",
			"text",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"item_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"author_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"author_name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"text": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
