package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	hospitalType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Hospital",
		Fields: graphql.Fields{
			"id":                  &graphql.Field{Type: graphql.String},
			"name":                &graphql.Field{Type: graphql.String},
			"address":             &graphql.Field{Type: graphql.String},
			"location":            &graphql.Field{Type: geoPointType},
			"phone":               &graphql.Field{Type: graphql.String},
			"specialities":        &graphql.Field{Type: graphql.String},
			"emergency_available": &graphql.Field{Type: graphql.Boolean},
			"distance":            &graphql.Field{Type: graphql.Float},
		},
	})

	syncReportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SyncReport",
		Fields: graphql.Fields{
			"status":        &graphql.Field{Type: graphql.String},
			"message":       &graphql.Field{Type: graphql.String},
			"center":        &graphql.Field{Type: geoPointType},
			"fetched":       &graphql.Field{Type: graphql.Int},
			"normalized":    &graphql.Field{Type: graphql.Int},
			"deduplicated":  &graphql.Field{Type: graphql.Int},
			"reconciled":    &graphql.Field{Type: graphql.Int},
			"failed_chunks": &graphql.Field{Type: graphql.Int},
		},
	})

	bookingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Booking",
		Fields: graphql.Fields{
			"id":             &graphql.Field{Type: graphql.String},
			"reference":      &graphql.Field{Type: graphql.String},
			"user_ref":       &graphql.Field{Type: graphql.String},
			"hospital_id":    &graphql.Field{Type: graphql.String},
			"assessment_ref": &graphql.Field{Type: graphql.String},
			"notes":          &graphql.Field{Type: graphql.String},
			"status":         &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hospitalsNearby": &graphql.Field{
				Type:        graphql.NewList(hospitalType),
				Description: "Find hospitals near a location, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radiusKm": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 10.0},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radiusKm := p.Args["radiusKm"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Hospitals.Nearby(p.Context, lat, lon, radiusKm, limit)
				},
			},
			"hospital": &graphql.Field{
				Type:        hospitalType,
				Description: "Get a hospital by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Hospitals.GetByID(p.Context, id)
				},
			},
			"syncStatus": &graphql.Field{
				Type:        syncReportType,
				Description: "Last completed or in-flight sync report",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sync.Snapshot(), nil
				},
			},
			"myBookings": &graphql.Field{
				Type:        graphql.NewList(bookingType),
				Description: "Bookings for the authenticated user",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Bookings.ListForCurrentUser(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			// User context so myBookings sees the JWT middleware's user.
			Context: c.UserContext(),
		})

		return c.JSON(result)
	}
}
