package mssql

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModuleDefinition(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		ansiNulls        bool
		quotedIdentifier bool
		expected         string
	}{
		{
			name:             "both settings on",
			text:             "CREATE VIEW [dbo].[v_users] AS SELECT [id] FROM [dbo].[users];",
			ansiNulls:        true,
			quotedIdentifier: true,
			expected: "SET ANSI_NULLS ON\nGO\n" +
				"SET QUOTED_IDENTIFIER ON\nGO\n" +
				"CREATE VIEW [dbo].[v_users] AS SELECT [id] FROM [dbo].[users];\nGO",
		},
		{
			name:             "settings off",
			text:             "CREATE PROCEDURE [dbo].[p] AS RETURN 0",
			ansiNulls:        false,
			quotedIdentifier: false,
			expected: "SET ANSI_NULLS OFF\nGO\n" +
				"SET QUOTED_IDENTIFIER OFF\nGO\n" +
				"CREATE PROCEDURE [dbo].[p] AS RETURN 0\nGO",
		},
		{
			name:             "trailing whitespace trimmed",
			text:             "CREATE FUNCTION [dbo].[f]() RETURNS int AS BEGIN RETURN 1 END\r\n\r\n",
			ansiNulls:        true,
			quotedIdentifier: false,
			expected: "SET ANSI_NULLS ON\nGO\n" +
				"SET QUOTED_IDENTIFIER OFF\nGO\n" +
				"CREATE FUNCTION [dbo].[f]() RETURNS int AS BEGIN RETURN 1 END\nGO",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, moduleDefinition(tt.text, tt.ansiNulls, tt.quotedIdentifier))
		})
	}
}
