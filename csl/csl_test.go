package csl

import (
	"testing"

	"github.com/citeproc-go/engine/cerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileBasicTitleStyle(t *testing.T) {
	style, err := Compile(`<style default-locale="en-US">
		<citation>
			<layout>
				<text variable="title"/>
			</layout>
		</citation>
	</style>`)
	require.NoError(t, err)
	require.Len(t, style.CitationLayout.Children, 1)
	text, ok := style.CitationLayout.Children[0].(Text)
	require.True(t, ok)
	assert.Equal(t, "title", text.Variable)
}

func TestCompileIbidChoose(t *testing.T) {
	style, err := Compile(`<style>
		<citation>
			<layout>
				<choose>
					<if position="ibid"><text value="ibid"/></if>
					<else><text variable="title"/></else>
				</choose>
			</layout>
		</citation>
	</style>`)
	require.NoError(t, err)
	choose, ok := style.CitationLayout.Children[0].(Choose)
	require.True(t, ok)
	require.Len(t, choose.Branches, 2)
	assert.Equal(t, "ibid", choose.Branches[0].Condition.Position)
	assert.True(t, choose.Branches[1].IsElse)
}

func TestCompileRejectsCyclicMacros(t *testing.T) {
	_, err := Compile(`<style>
		<macro name="a"><text macro="b"/></macro>
		<macro name="b"><text macro="a"/></macro>
		<citation><layout><text macro="a"/></layout></citation>
	</style>`)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.StyleInvalid))
}

func TestCompileRejectsDanglingMacroRef(t *testing.T) {
	_, err := Compile(`<style>
		<macro name="a"><text macro="ghost"/></macro>
		<citation><layout><text macro="a"/></layout></citation>
	</style>`)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.StyleInvalid))
}

func TestCompileRequiresCitationLayout(t *testing.T) {
	_, err := Compile(`<style></style>`)
	require.Error(t, err)
	assert.True(t, cerr.Is(err, cerr.StyleInvalid))
}

func TestCompileNamesAndDisambiguationAttributes(t *testing.T) {
	style, err := Compile(`<style>
		<citation disambiguate-add-year-suffix="true" disambiguate-add-names="true"
			givenname-disambiguation-rule="all-names-with-initials" collapse="year-suffix">
			<layout delimiter="; ">
				<names variable="author">
					<name initialize-with="." and="text"/>
					<et-al min="4" use-first="3"/>
				</names>
			</layout>
		</citation>
		<bibliography hanging-indent="true">
			<sort><key variable="author"/></sort>
			<layout><names variable="author"/></layout>
		</bibliography>
	</style>`)
	require.NoError(t, err)
	assert.True(t, style.DisambiguateAddYearSuffix)
	assert.True(t, style.DisambiguateAddNames)
	assert.Equal(t, "all-names-with-initials", style.GivenNameDisambiguationRule)
	assert.Equal(t, "year-suffix", style.Collapse)
	names := style.CitationLayout.Children[0].(Names)
	assert.Equal(t, ".", names.Name.InitializeWith)
	assert.Equal(t, 4, names.EtAlMin)
	assert.Equal(t, 3, names.EtAlUseFirst)
	require.NotNil(t, style.BibliographyLayout)
	assert.True(t, style.HangingIndent)
	require.Len(t, style.BibliographySort, 1)
	assert.Equal(t, "author", style.BibliographySort[0].Variable)
}
