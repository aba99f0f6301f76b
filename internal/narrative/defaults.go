package narrative

import "github.com/alexanderramin/pblcoach/internal/domain"

// DefaultPack returns the built-in phrase pools.
func DefaultPack() Pack {
	return Pack{
		Stages: map[domain.StageID]StagePack{
			domain.StageContext: {
				Prompt: "Let's start with your classroom. What subject do you teach, what grade are your students, and how long do you have for this unit?",
				Positive: []string{
					"Thanks, that helps a lot.",
					"Great, that gives me a clear picture.",
					"Perfect, I've noted that.",
				},
				Build: []string{
					"Knowing about {subject} for {gradeLevel} will shape everything we design.",
					"I'll keep {gradeLevel} in mind as we go.",
				},
				Transition: []string{
					"Now let's find the Big Idea at the heart of your project.",
					"Next, let's name the Big Idea that will anchor the unit.",
				},
				Refinements: []string{
					"I teach {subject} to {gradeLevel}",
					"My students are in {gradeLevel}",
					"We have {duration} for this project",
				},
			},
			domain.StageBigIdea: {
				Prompt: "What is the Big Idea for this {subject} project? Think of a broad theme {gradeLevel} can connect to their own lives.",
				Positive: []string{
					"That's a powerful theme.",
					"I love that Big Idea.",
					"That's a rich concept to build on.",
				},
				Build: []string{
					"\"{value}\" gives students plenty of room to explore.",
					"A theme like \"{value}\" connects naturally to the real world.",
				},
				Transition: []string{
					"Let's turn it into an Essential Question that drives inquiry.",
					"Next, what question will keep students curious about it?",
				},
				Refinements: []string{
					"{value} shapes the world around us",
					"How {subject} helps us understand {value}",
					"The relationship between people and {value}",
				},
			},
			domain.StageEssentialQuestion: {
				Prompt: "What Essential Question will drive your students' inquiry? Aim for an open-ended question with no single right answer.",
				Positive: []string{
					"That's a question worth investigating.",
					"What a compelling question.",
					"That will spark real curiosity.",
				},
				Build: []string{
					"\"{value}\" invites many possible answers.",
					"Students can return to \"{value}\" throughout the unit.",
				},
				Transition: []string{
					"Now let's design the Challenge students will tackle.",
					"Next, let's decide what students will actually do.",
				},
				Refinements: []string{
					"How might we use {subject} to answer: {value}",
					"Why should {gradeLevel} care whether {value}",
					"What would change in our community if {value}",
				},
			},
			domain.StageChallenge: {
				Prompt: "What authentic Challenge will your students take on? Describe something they will create, design, solve, build or develop.",
				Positive: []string{
					"That's an authentic challenge.",
					"Students will love tackling that.",
					"That's a meaningful task.",
				},
				Build: []string{
					"\"{value}\" gives students a real audience and purpose.",
					"A challenge like this makes {subject} feel relevant.",
				},
				Transition: []string{
					"Let's map the Learning Journey that gets them there.",
					"Next, let's plan how students will move through the project.",
				},
				Refinements: []string{
					"Design a solution that addresses {value}",
					"Build a prototype that shows {value}",
					"Create a public resource about {value}",
				},
			},
			domain.StageJourney: {
				Prompt: "How will students move through the project? Outline the Learning Journey from first exploration to final product over {duration}.",
				Positive: []string{
					"That journey flows nicely.",
					"That's a well-paced plan.",
					"Great progression.",
				},
				Build: []string{
					"Students will build skills step by step across {duration}.",
					"Each phase sets up the next one.",
				},
				Transition: []string{
					"Finally, let's decide on the Deliverables.",
					"Last step: what will students produce?",
				},
				Refinements: []string{
					"Explore, research, prototype, then present: {value}",
					"Launch with a hook, investigate in teams, then share: {value}",
					"Week by week: {value}",
				},
			},
			domain.StageDeliverables: {
				Prompt: "What will students produce, and who will see it? Describe the Deliverables.",
				Positive: []string{
					"Those deliverables will make learning visible.",
					"That's a great way to showcase learning.",
					"Excellent.",
				},
				Build: []string{
					"\"{value}\" gives students something to be proud of.",
					"A real audience will raise the stakes in the best way.",
				},
				Transition: []string{
					"Your project design is complete.",
					"That completes your unit design.",
				},
				Refinements: []string{
					"A public exhibition featuring {value}",
					"A presentation to community partners about {value}",
					"A portfolio documenting {value}",
				},
			},
		},
		Review: []string{
			"Here's what I heard: \"{value}\". Does that capture it, or would you like to refine it?",
			"I've got \"{value}\". Shall we lock that in?",
		},
		Refine: []string{
			"\"{value}\" is a start. Let's sharpen it together; pick one of the options below or write your own.",
			"We've gone back and forth on this one. Here are a few ways to phrase \"{value}\".",
		},
		Completion: []string{
			"Congratulations! Your {subject} project for {gradeLevel} is ready to launch.",
			"You've designed a complete project, and {gradeLevel} are in for something special.",
		},
	}
}
