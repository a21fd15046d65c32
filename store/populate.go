package store

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Join resolves the reference held in LocalField to a document of the Target
// schema, replacing the id in place. Only _id and Fields are kept unless
// Fields is empty, in which case the whole document is embedded. Inner stages
// run on the joined document before it is embedded.
type Join struct {
	LocalField string
	Target     string
	Fields     []string
	Inner      mongo.Pipeline
}

var (
	OrganizerJoin = Join{LocalField: "organizer", Target: SchemaUser, Fields: []string{"firstName", "lastName"}}
	CategoryJoin  = Join{LocalField: "category", Target: SchemaCategory, Fields: []string{"name"}}

	// EventJoin embeds a fully populated event, used by order views.
	EventJoin = Join{LocalField: "event", Target: SchemaEvent, Inner: PopulateEvent(nil)}
)

// Stages renders the join as $lookup and $unwind stages. A dangling
// reference unwinds to a missing field.
func (j Join) Stages() mongo.Pipeline {
	inner := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$_id", "$$ref"}},
		}}}}},
	}
	if len(j.Fields) > 0 {
		project := bson.D{{Key: "_id", Value: 1}}
		for _, field := range j.Fields {
			project = append(project, bson.E{Key: field, Value: 1})
		}
		inner = append(inner, bson.D{{Key: "$project", Value: project}})
	}
	inner = append(inner, j.Inner...)

	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: schemas[j.Target].Collection},
			{Key: "let", Value: bson.D{{Key: "ref", Value: "$" + j.LocalField}}},
			{Key: "pipeline", Value: inner},
			{Key: "as", Value: j.LocalField},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + j.LocalField},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// PopulateEvent appends the organizer and category joins to a pipeline over
// events. Every event read goes through it so views have one shape.
func PopulateEvent(base mongo.Pipeline) mongo.Pipeline {
	return populate(base, OrganizerJoin, CategoryJoin)
}

func populate(base mongo.Pipeline, joins ...Join) mongo.Pipeline {
	out := make(mongo.Pipeline, 0, len(base)+2*len(joins))
	out = append(out, base...)
	for _, j := range joins {
		out = append(out, j.Stages()...)
	}
	return out
}
