package workflows

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"sera/internal/activities"
	"sera/internal/organize"
)

type DiscWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
}

func TestDiscWorkflowSuite(t *testing.T) {
	suite.Run(t, new(DiscWorkflowTestSuite))
}

func (s *DiscWorkflowTestSuite) newEnv() *testsuite.TestWorkflowEnvironment {
	env := s.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(ProcessFolder, workflow.RegisterOptions{Name: ProcessFolderWorkflowName})
	return env
}

func discInput() organize.ProcessFolderInput {
	return organize.ProcessFolderInput{
		FolderPath: "/proc/run/Show/disc1",
		FolderName: "disc1",
		SeriesRoot: "/proc/run/Show",
		ShowName:   "Frieren",
		Metadata: organize.SeriesMetadata{
			Seasons: []organize.Season{{
				SeasonNumber: 1,
				AnilistID:    100,
				TitleEnglish: "Frieren",
				EpisodeCount: 3,
				Episodes: []organize.Episode{
					{Number: 1, Title: "First"},
					{Number: 2, Title: "Second"},
					{Number: 3, Title: "Third"},
				},
			}},
			TotalEpisodes: 3,
		},
		ConfidenceThreshold: 0.85,
	}
}

func discFile(name string) organize.SourceFile {
	return organize.SourceFile{
		Path:         "/proc/run/Show/disc1/" + name,
		RelativePath: name,
		Name:         name,
		Size:         1 << 30,
	}
}

func registerDetect(env *testsuite.TestWorkflowEnvironment, result organize.DetectionResult) {
	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.DetectEpisodesInput) (organize.DetectionResult, error) {
			return result, nil
		},
		activity.RegisterOptions{Name: activityDetectEpisodes})
}

func registerExtract(env *testsuite.TestWorkflowEnvironment, s *DiscWorkflowTestSuite) {
	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.ExtractSubtitlesInput) (activities.ExtractSubtitlesResult, error) {
			s.Equal(filepath.Join("/proc/run/Show", "_subtitles", "disc1"), in.TargetDir)
			base := strings.TrimSuffix(in.MediaName, filepath.Ext(in.MediaName))
			return activities.ExtractSubtitlesResult{Subtitle: &activities.SubtitleRef{
				MediaPath:    in.MediaPath,
				MediaName:    in.MediaName,
				SubtitlePath: filepath.Join(in.TargetDir, base+".txt"),
				Source:       "embedded",
				Snippet:      "dialogue from " + in.MediaName,
			}}, nil
		},
		activity.RegisterOptions{Name: activityExtractSubtitles})
}

func registerMatches(env *testsuite.TestWorkflowEnvironment, matches []organize.EpisodeMatch) {
	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.MatchEpisodesInput) (activities.MatchEpisodesResult, error) {
			return activities.MatchEpisodesResult{Matches: matches}, nil
		},
		activity.RegisterOptions{Name: activityMatchEpisodes})
}

func registerEpisodeCopies(env *testsuite.TestWorkflowEnvironment, dests *[]string) {
	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.CopyEpisodeFileInput) (activities.CopyEpisodeFileResult, error) {
			*dests = append(*dests, in.DestPath)
			return activities.CopyEpisodeFileResult{Copied: true}, nil
		},
		activity.RegisterOptions{Name: activityCopyEpisodeFile})
}

func (s *DiscWorkflowTestSuite) TestHighConfidenceHappyPath() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:    []organize.SourceFile{discFile("t00.mkv"), discFile("t01.mkv")},
		NonEpisodes: []organize.SourceFile{discFile("menu.mkv")},
		Confidence:  organize.ConfidenceHigh,
	})
	registerExtract(env, s)
	registerMatches(env, []organize.EpisodeMatch{
		{FileName: "t00.mkv", FilePath: "/proc/run/Show/disc1/t00.mkv", SeasonNumber: 1, EpisodeNumber: 1, EpisodeTitle: "First", Confidence: 0.97},
		{FileName: "t01.mkv", FilePath: "/proc/run/Show/disc1/t01.mkv", SeasonNumber: 1, EpisodeNumber: 2, EpisodeTitle: "Second", Confidence: 0.92},
	})
	var dests []string
	registerEpisodeCopies(env, &dests)

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	s.NoError(env.GetWorkflowError())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderCompleted, result.Status)
	s.Equal("disc1", result.FolderName)
	s.Equal(3, result.TotalVideoFiles)
	s.Equal(2, result.EpisodesRenamed)
	s.Empty(result.Error)
	s.Equal([]string{"menu.mkv"}, result.UnprocessedFiles)

	s.Require().Len(dests, 2)
	s.Equal(filepath.Join("/proc/run/Show", "_episodes", "Season 01", "Frieren - S01E01 - First.mkv"), dests[0])
	s.Equal(filepath.Join("/proc/run/Show", "_episodes", "Season 01", "Frieren - S01E02 - Second.mkv"), dests[1])

	s.Require().Len(result.RenamedFiles, 2)
	s.Equal("t00.mkv", filepath.Base(result.RenamedFiles[0].OriginalPath))
	s.Equal(filepath.Join("disc1", "t00.mkv"), result.RenamedFiles[0].OriginalRelativePath)
	s.Equal(1, result.RenamedFiles[0].SeasonNumber)
	s.Equal(1, result.RenamedFiles[0].EpisodeNumber)
}

func (s *DiscWorkflowTestSuite) TestLowConfidenceMatchGoesToReview() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:   []organize.SourceFile{discFile("t00.mkv")},
		Confidence: organize.ConfidenceHigh,
	})
	registerExtract(env, s)
	registerMatches(env, []organize.EpisodeMatch{
		{FileName: "t00.mkv", FilePath: "/proc/run/Show/disc1/t00.mkv", SeasonNumber: 1, EpisodeNumber: 1, Confidence: 0.4, Reasoning: "sparse dialogue"},
	})
	var dests []string
	registerEpisodeCopies(env, &dests)

	// A rejection is discarded; the later approval with a corrected episode
	// settles the item.
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalReviewDecision, organize.ReviewDecision{
			ReviewItemID: "disc1-t00.mkv",
			Approved:     false,
		})
	}, time.Minute)
	corrected := 2
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalReviewDecision, organize.ReviewDecision{
			ReviewItemID:     "disc1-t00.mkv",
			Approved:         true,
			CorrectedEpisode: &corrected,
		})
	}, 2*time.Minute)

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderCompleted, result.Status)
	s.Equal(1, result.EpisodesRenamed)
	s.Require().Len(dests, 1)
	s.Equal(filepath.Join("/proc/run/Show", "_episodes", "Season 01", "Frieren - S01E02 - Second.mkv"), dests[0])
	s.Require().Len(result.RenamedFiles, 1)
	s.Equal(2, result.RenamedFiles[0].EpisodeNumber)
}

func (s *DiscWorkflowTestSuite) TestDetectionConfirmationAdjustsCluster() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:    []organize.SourceFile{discFile("a.mkv"), discFile("b.mkv"), discFile("c.mkv")},
		NonEpisodes: []organize.SourceFile{discFile("x.mkv")},
		Confidence:  organize.ConfidenceMedium,
	})
	registerExtract(env, s)
	registerMatches(env, []organize.EpisodeMatch{
		{FileName: "a.mkv", FilePath: "/proc/run/Show/disc1/a.mkv", SeasonNumber: 1, EpisodeNumber: 1, Confidence: 0.95},
		{FileName: "b.mkv", FilePath: "/proc/run/Show/disc1/b.mkv", SeasonNumber: 1, EpisodeNumber: 2, Confidence: 0.95},
		{FileName: "x.mkv", FilePath: "/proc/run/Show/disc1/x.mkv", SeasonNumber: 1, EpisodeNumber: 3, Confidence: 0.95},
	})
	var dests []string
	registerEpisodeCopies(env, &dests)

	// An unconfirmed submission is discarded; the confirmed one swaps c out
	// and x in, referenced by bare name.
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalDetectionConfirmation, organize.DetectionConfirmation{Confirmed: false})
	}, time.Minute)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalDetectionConfirmation, organize.DetectionConfirmation{
			Confirmed:    true,
			RemovedPaths: []string{"c.mkv"},
			AddedPaths:   []string{"x.mkv"},
		})
	}, 2*time.Minute)

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderCompleted, result.Status)
	s.Equal(3, result.EpisodesRenamed)
	s.Len(dests, 3)
	s.Equal([]string{"c.mkv"}, result.UnprocessedFiles)
}

func (s *DiscWorkflowTestSuite) TestEmptyFolderCompletes() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{Confidence: organize.ConfidenceLow})

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))
	s.Equal(organize.FolderCompleted, result.Status)
	s.Zero(result.TotalVideoFiles)
	s.Zero(result.EpisodesRenamed)
}

func (s *DiscWorkflowTestSuite) TestNoSubtitlesFailsFolder() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:   []organize.SourceFile{discFile("t00.mkv"), discFile("t01.mkv")},
		Confidence: organize.ConfidenceHigh,
	})
	env.RegisterActivityWithOptions(
		func(ctx context.Context, in activities.ExtractSubtitlesInput) (activities.ExtractSubtitlesResult, error) {
			return activities.ExtractSubtitlesResult{}, nil
		},
		activity.RegisterOptions{Name: activityExtractSubtitles})

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	s.NoError(env.GetWorkflowError())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderFailed, result.Status)
	s.Contains(result.Error, "no subtitles extracted from any of 2 episode files")
}

func (s *DiscWorkflowTestSuite) TestDryRunReportsPlan() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:    []organize.SourceFile{discFile("t00.mkv"), discFile("t01.mkv")},
		NonEpisodes: []organize.SourceFile{discFile("menu.mkv")},
		Confidence:  organize.ConfidenceMedium,
	})

	input := discInput()
	input.DryRun = true
	env.ExecuteWorkflow(ProcessFolderWorkflowName, input)

	s.True(env.IsWorkflowCompleted())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderCompleted, result.Status)
	s.Equal(2, result.EpisodesRenamed)
	s.Equal([]string{"menu.mkv"}, result.UnprocessedFiles)
}

func (s *DiscWorkflowTestSuite) TestDuplicateSlotRoutedToReview() {
	env := s.newEnv()
	registerDetect(env, organize.DetectionResult{
		Episodes:   []organize.SourceFile{discFile("t00.mkv"), discFile("t01.mkv")},
		Confidence: organize.ConfidenceHigh,
	})
	registerExtract(env, s)
	registerMatches(env, []organize.EpisodeMatch{
		{FileName: "t00.mkv", FilePath: "/proc/run/Show/disc1/t00.mkv", SeasonNumber: 1, EpisodeNumber: 1, Confidence: 0.95},
		{FileName: "t01.mkv", FilePath: "/proc/run/Show/disc1/t01.mkv", SeasonNumber: 1, EpisodeNumber: 1, Confidence: 0.9},
	})
	var dests []string
	registerEpisodeCopies(env, &dests)

	corrected := 2
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalReviewDecision, organize.ReviewDecision{
			ReviewItemID:     "disc1-t01.mkv",
			Approved:         true,
			CorrectedEpisode: &corrected,
		})
	}, time.Minute)

	env.ExecuteWorkflow(ProcessFolderWorkflowName, discInput())

	s.True(env.IsWorkflowCompleted())
	var result organize.ProcessFolderResult
	s.NoError(env.GetWorkflowResult(&result))

	s.Equal(organize.FolderCompleted, result.Status)
	s.Equal(2, result.EpisodesRenamed)
	s.Require().Len(result.RenamedFiles, 2)
	// The first claim kept episode 1; the duplicate settled on episode 2.
	s.Equal(1, result.RenamedFiles[0].EpisodeNumber)
	s.Equal(2, result.RenamedFiles[1].EpisodeNumber)
}
