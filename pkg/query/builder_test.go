package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDialect_QuoteIdent(t *testing.T) {
	assert.Equal(t, "`dbo`.`users`", MySQL.QuoteIdent("dbo.users"))
	assert.Equal(t, "[dbo].[users]", MSSQL.QuoteIdent("dbo.users"))
	assert.Equal(t, `"public"."users"`, Postgres.QuoteIdent("public.users"))
	assert.Equal(t, "`a``b`", MySQL.QuoteIdent("a`b"))
	assert.Equal(t, "[a]]b]", MSSQL.QuoteIdent("a]b"))
}

func TestBuilder_Select(t *testing.T) {
	tests := []struct {
		name           string
		build          func() *Builder
		expectedSQL    string
		expectedParams []interface{}
	}{
		{
			name: "Columns With Alias",
			build: func() *Builder {
				return From(MySQL, "users").As("t1").Select("id", "name")
			},
			expectedSQL: "SELECT `t1`.`id`, `t1`.`name` FROM `users` AS `t1`",
		},
		{
			name: "Bound Where",
			build: func() *Builder {
				return From(Postgres, "users").Select("id").Where(AllOf(Eq(`"id"`, 5), Eq(`"name"`, "x")))
			},
			expectedSQL:    `SELECT "id" FROM "users" WHERE "id" = $1 AND "name" = $2`,
			expectedParams: []interface{}{5, "x"},
		},
		{
			name: "Left Join",
			build: func() *Builder {
				return From(MySQL, "orders").As("t1").
					Select("id").
					SelectAs("t2", "name", "t2_name").
					Join("LEFT", "customers", "t2", "`t1`.`customer_id` = `t2`.`id`")
			},
			expectedSQL: "SELECT `t1`.`id`, `t2`.`name` AS `t2_name` FROM `orders` AS `t1` LEFT JOIN `customers` AS `t2` ON `t1`.`customer_id` = `t2`.`id`",
		},
		{
			name: "MySQL Paging",
			build: func() *Builder {
				return From(MySQL, "users").OrderBy("`id`", "desc").Limit(10).Offset(20)
			},
			expectedSQL: "SELECT * FROM `users` ORDER BY `id` DESC LIMIT 10 OFFSET 20",
		},
		{
			name: "MSSQL Paging Without Order",
			build: func() *Builder {
				return From(MSSQL, "dbo.users").Limit(5)
			},
			expectedSQL: "SELECT * FROM [dbo].[users] ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 5 ROWS ONLY",
		},
		{
			name: "Group By Aggregate",
			build: func() *Builder {
				return From(MySQL, "sales").AddSelectRaw("COUNT(*)", "count").GroupBy("`region`").Select("region")
			},
			expectedSQL: "SELECT COUNT(*) AS `count`, `region` FROM `sales` GROUP BY `region`",
		},
		{
			name: "Raw And Tree Where",
			build: func() *Builder {
				return From(MySQL, "users").
					Where(AnyOf(Eq("a", 1), Eq("b", 2))).
					WhereRaw("c > 3")
			},
			expectedSQL:    "SELECT * FROM `users` WHERE (a = ? OR b = ?) AND c > 3",
			expectedParams: []interface{}{1, 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.build().Build()
			assert.Equal(t, tc.expectedSQL, result.SQL)
			assert.Equal(t, tc.expectedParams, result.Params)
		})
	}
}

func TestBuilder_Insert(t *testing.T) {
	result := Insert(Postgres, "public.users").
		Set("name", "Ann").
		Set("created", RawValue("now()")).
		Returning().
		Build()

	assert.Equal(t, `INSERT INTO "public"."users" ("name", "created") VALUES ($1, now()) RETURNING *`, result.SQL)
	assert.Equal(t, []interface{}{"Ann"}, result.Params)

	mssql := Insert(MSSQL, "users").Set("name", "Ann").Returning().Build()
	assert.Equal(t, "INSERT INTO [users] ([name]) OUTPUT INSERTED.* VALUES (@p1)", mssql.SQL)

	mysql := Insert(MySQL, "users").Set("name", "Ann").Returning().Build()
	assert.Equal(t, "INSERT INTO `users` (`name`) VALUES (?)", mysql.SQL)
}

func TestBuilder_UpdateAndDelete(t *testing.T) {
	upd := Update(MSSQL, "users").
		Set("name", "Bob").
		Where(Leaf{Column: "[age]", Fragment: "> 18"}).
		Build()
	assert.Equal(t, "UPDATE [users] SET [name] = @p1 WHERE [age] > 18", upd.SQL)
	assert.Equal(t, []interface{}{"Bob"}, upd.Params)

	del := Delete(MySQL, "users").Where(Eq("`id`", 7)).Build()
	assert.Equal(t, "DELETE FROM `users` WHERE `id` = ?", del.SQL)
	assert.Equal(t, []interface{}{7}, del.Params)
}

func TestRender_NullAndNesting(t *testing.T) {
	sql, params := Render(MySQL, AllOf(Eq("a", nil), AnyOf(Eq("b", 1), AllOf(Eq("c", 2), Eq("d", 3)))))
	assert.Equal(t, "a IS NULL AND (b = ? OR (c = ? AND d = ?))", sql)
	assert.Equal(t, []interface{}{1, 2, 3}, params)
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, "'O''Brien'", Literal("O'Brien", true))
	assert.Equal(t, "42", Literal(42, false))
	assert.Equal(t, "NULL", Literal(nil, true))
	assert.Equal(t, "1", Literal(true, false))
}

func TestRender_ListAndNotNull(t *testing.T) {
	sql, params := Render(Postgres, AllOf(
		Leaf{Column: "a", Operator: "IN", Value: []any{1, 2}},
		Leaf{Column: "b", Operator: "!=", Value: nil},
	))
	assert.Equal(t, "a IN ($1, $2) AND b IS NOT NULL", sql)
	assert.Equal(t, []interface{}{1, 2}, params)
}
