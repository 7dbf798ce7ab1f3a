package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/config"
	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/experiment"
)

func listModels(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	if len(args) == 1 {
		m, err := registry.GetModel(args[0])
		if err != nil {
			return err
		}
		data, err := config.FromModel(m).Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tVOLUME\tSPECIES\tREACTIONS")
	for _, name := range registry.ListModels() {
		m, err := registry.GetModel(name)
		if err != nil {
			return err
		}
		names := make([]string, 0, m.NumSpecies())
		for _, s := range m.Species() {
			names = append(names, s.Name())
		}
		fmt.Fprintf(w, "%s\t%g\t%s\t%d\n", name, m.Volume(), strings.Join(names, ","), m.NumReactions())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(labelStyle.Render("methods: " + strings.Join(registry.ListMethods(), ", ")))
	return nil
}

func validateModel(cmd *cobra.Command, args []string) error {
	mf, err := config.LoadModelFile(args[0])
	if err != nil {
		return err
	}
	m, err := mf.Build()
	if err != nil {
		fmt.Println(warnStyle.Render("invalid: ") + err.Error())
		return err
	}
	c, err := m.Compiled()
	if err != nil {
		return err
	}

	fmt.Println(okStyle.Render("valid: ") + titleStyle.Render(c.Name()))
	fmt.Println(field("volume", c.Volume()))

	fmt.Println(headerStyle.Render("species"))
	initial := c.InitialState()
	for i, name := range c.Species() {
		fmt.Println(field("  "+name, initial[i]))
	}

	if names := c.ParameterNames(); len(names) > 0 {
		fmt.Println(headerStyle.Render("parameters"))
		for _, name := range names {
			v, _ := c.Parameter(name)
			fmt.Println(field("  "+name, v))
		}
	}

	fmt.Println(headerStyle.Render("reactions"))
	for _, r := range c.Reactions() {
		fmt.Printf("  %s  %s -> %s  %s\n",
			valueStyle.Render(r.Name()),
			side(c, r.Reactants()),
			side(c, r.Products()),
			labelStyle.Render("a = "+r.Expression()))
	}
	return nil
}

func side(c *crn.Compiled, terms []crn.Term) string {
	if len(terms) == 0 {
		return "0"
	}
	species := c.Species()
	parts := make([]string, len(terms))
	for i, t := range terms {
		if t.Count == 1 {
			parts[i] = species[t.Species]
		} else {
			parts[i] = fmt.Sprintf("%d %s", t.Count, species[t.Species])
		}
	}
	return strings.Join(parts, " + ")
}
