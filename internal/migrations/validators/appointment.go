package validators

import "go.mongodb.org/mongo-driver/bson"

// AppointmentValidator mirrors the agendamentos table of the SQL stores.
// descricao is required as a field but may be the empty string.
var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"nome",
			"telefone",
			"veiculo",
			"tipo_servico",
			"descricao",
			"data",
			"hora",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},
			"nome":         bson.M{"bsonType": "string"},
			"telefone":     bson.M{"bsonType": "string"},
			"veiculo":      bson.M{"bsonType": "string"},
			"tipo_servico": bson.M{"bsonType": "string"},
			"descricao":    bson.M{"bsonType": "string"},
			"data":         bson.M{"bsonType": "string"},
			"hora":         bson.M{"bsonType": "string"},
		},
	},
}

var DateLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"owner":      bson.M{"bsonType": "string"},
			"expires_at": bson.M{"bsonType": "date"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
